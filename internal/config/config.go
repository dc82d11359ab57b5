package config

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}
type MysqlCfg struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Database     string `mapstructure:"database"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Charset      string `mapstructure:"charset"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}
type RabbitCfg struct {
	URL string `mapstructure:"url"`
}
type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AbpayCfg RSA签名通道(abpay)配置,密钥启动时加载一次,之后只读
type AbpayCfg struct {
	BaseURL        string `mapstructure:"baseUrl"`
	MerchantNo     string `mapstructure:"merchantNo"`
	AppID          string `mapstructure:"appId"`
	PrivateKeyPath string `mapstructure:"privateKeyPath"`
	PublicKeyPath  string `mapstructure:"publicKeyPath"`
}

// FlashpayCfg MD5双重签名通道(flashpay)配置
type FlashpayCfg struct {
	SubmitURL string `mapstructure:"submitUrl"`
	OpenID    string `mapstructure:"openid"`
	Token     string `mapstructure:"token"`
	NotifyURL string `mapstructure:"notifyUrl"`
}

type RetryCfg struct {
	Times    int           `mapstructure:"times"`
	Interval time.Duration `mapstructure:"interval"`
}

type UpstreamCfg struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryCfg      `mapstructure:"retry"`
}

// ReconcileCfg 对账配置
// protectTerminal: 终态订单是否拒绝被迟到/重复通知回退状态(默认关闭,保持与上游的字面语义)
type ReconcileCfg struct {
	ProtectTerminal bool          `mapstructure:"protectTerminal"`
	LockTTL         time.Duration `mapstructure:"lockTTL"`
}

type Root struct {
	Server    ServerCfg    `mapstructure:"server"`
	Mysql     MysqlCfg     `mapstructure:"mysql"`
	RabbitMQ  RabbitCfg    `mapstructure:"rabbitmq"`
	Redis     RedisCfg     `mapstructure:"redis"`
	Abpay     AbpayCfg     `mapstructure:"abpay"`
	Flashpay  FlashpayCfg  `mapstructure:"flashpay"`
	Upstream  UpstreamCfg  `mapstructure:"upstream"`
	Reconcile ReconcileCfg `mapstructure:"reconcile"`
}

var C Root

func Init() {
	env := flag.String("env", "dev", "config env: dev|prod")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile("config/config." + *env + ".yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config file failed: %v", err)
	}
	if err := v.Unmarshal(&C); err != nil {
		log.Fatalf("unmarshal config failed: %v", err)
	}

	// sane defaults
	if strings.TrimSpace(C.Server.Port) == "" {
		C.Server.Port = "8080"
	}
	if C.Upstream.Timeout <= 0 {
		C.Upstream.Timeout = 10 * time.Second
	}
	if C.Upstream.Retry.Times <= 0 {
		C.Upstream.Retry.Times = 1
	}
	if C.Upstream.Retry.Interval <= 0 {
		C.Upstream.Retry.Interval = 2 * time.Second
	}
	if C.Reconcile.LockTTL <= 0 {
		C.Reconcile.LockTTL = 5 * time.Second
	}
}

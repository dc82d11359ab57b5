package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
)

type TelegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
	Parse  string `json:"parse_mode"`
}

func init() {
	_ = godotenv.Load() // 自动加载 .env 文件
}

func SendTelegramMessage(chatID string, content string) error {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		return fmt.Errorf("missing TELEGRAM_BOT_TOKEN in env")
	}

	msg := TelegramMessage{
		ChatID: chatID,
		Text:   content,
		Parse:  "Markdown",
	}
	body, _ := json.Marshal(msg)
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", botToken)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// NotifyGatewayAlert 异步上报网关异常,chat id 走环境变量
func NotifyGatewayAlert(level, title, text string) {
	chatID := os.Getenv("TELEGRAM_ALERT_CHAT_ID")
	if chatID == "" {
		return
	}
	content := fmt.Sprintf("[%s] %s\n%s", level, title, text)
	go func() {
		if err := SendTelegramMessage(chatID, content); err != nil {
			log.Printf("Telegram 消息发送失败: %v", err)
		}
	}()
}

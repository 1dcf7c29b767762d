package telegram

import (
	"fmt"
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"plantify/internal/domain/entity"
)

// Telegram ограничивает подпись к фото 1024 символами, поэтому карточка идёт отдельным сообщением.
const captionLimit = 1024

// renderState превращает состояние сессии в сообщения чата. Idle ничего не показывает.
func renderState(chatID int64, state entity.SessionState) []tgbotapi.Chattable {
	switch state.Kind {
	case entity.StateLoading:
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, msgIdentifying)}

	case entity.StateError:
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "⚠️ "+state.Message)}

	case entity.StateSuccess:
		if state.Record == nil {
			return nil
		}
		card := formatCard(*state.Record)

		var out []tgbotapi.Chattable
		if photo, ok := photoOf(chatID, state.Image); ok {
			if len([]rune(card)) <= captionLimit {
				photo.Caption = card
				return append(out, photo)
			}
			photo.Caption = "🌿 " + state.Record.Name
			out = append(out, photo)
		}
		return append(out, tgbotapi.NewMessage(chatID, card))
	}
	return nil
}

// photoOf готовит фото из изображения, которое дало результат.
func photoOf(chatID int64, img *entity.RawImage) (tgbotapi.PhotoConfig, bool) {
	if img == nil || img.Blob == nil {
		return tgbotapi.PhotoConfig{}, false
	}
	rc, err := img.Blob.Open()
	if err != nil {
		log.Warn().Err(err).Str("acquisition", img.AcquisitionID).Msg("open image for display")
		return tgbotapi.PhotoConfig{}, false
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil || len(data) == 0 {
		return tgbotapi.PhotoConfig{}, false
	}

	name := img.Name
	if name == "" {
		name = "plant"
	}
	return tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data}), true
}

// formatCard карточка растения
func formatCard(rec entity.PlantRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🌿 %s\n", rec.Name)
	fmt.Fprintf(&sb, "🔬 %s\n", rec.ScientificName)
	fmt.Fprintf(&sb, "🌳 Family: %s\n", rec.Family)
	fmt.Fprintf(&sb, "\n📖 Description\n%s\n", rec.Description)
	fmt.Fprintf(&sb, "\n🪴 Care\n%s\n", rec.Care)
	fmt.Fprintf(&sb, "\n✨ Fun facts\n%s", rec.FunFacts)
	return sb.String()
}

// imageAttachment выбирает изображение из сообщения: самое большое фото или документ.
func imageAttachment(msg *tgbotapi.Message) (fileID, name, contentType string, ok bool) {
	if len(msg.Photo) > 0 {
		largest := msg.Photo[0]
		for _, p := range msg.Photo[1:] {
			if p.Width*p.Height > largest.Width*largest.Height {
				largest = p
			}
		}
		// Telegram пережимает фото в JPEG
		return largest.FileID, "photo.jpg", "image/jpeg", true
	}
	if msg.Document != nil {
		return msg.Document.FileID, msg.Document.FileName, msg.Document.MimeType, true
	}
	return "", "", "", false
}

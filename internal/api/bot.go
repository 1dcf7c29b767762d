package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	app "plantify/internal/application"
	"plantify/internal/domain/entity"
	"plantify/internal/infrastructure/imagefile"
)

const (
	msgStart = `🌿 Hi! I identify plants from a single photo.

📸 Send me a photo of a plant (or an image file) and I will tell you what it is and how to care for it.

📋 Commands:
/identify — identify a plant from a photo
/capture — take a picture with the camera
/share — get a text to share the last result
/help — help`

	msgHelp = `ℹ️ How to use the bot:

1️⃣ Send a photo of the plant
2️⃣ Wait a few seconds while it is identified
3️⃣ Get the plant card: name, family, description, care tips and fun facts

💡 Tips:
• One plant per photo
• Good lighting, leaves and flowers in focus

📋 Commands:
/identify — identify from a photo
/capture — take a picture with the camera
/share — share the last result`

	msgAwaitingPhoto  = "📸 Send a photo of the plant you want to identify."
	msgSendPhoto      = "📸 Please send a photo of a plant."
	msgUnknownCommand = "❓ Unknown command. Use /help for help."
	msgIdentifying    = "⏳ Identifying plant..."
	msgNoCamera       = "📷 The camera is not available on this server. Send a photo instead."
	msgNothingToShare = "🤷 Nothing to share yet. Identify a plant first."
	msgDownloadError  = "⚠️ Could not download the image. Please try again."
	msgNoImage        = "⚠️ No image provided."
)

const outboxSize = 64

type outgoing struct {
	chatID int64
	state  entity.SessionState
}

// Bot представляет Telegram-бота
type Bot struct {
	api     *tgbotapi.BotAPI
	service *app.IdentificationService
	http    *http.Client

	outbox  chan outgoing
	stopped chan struct{}
}

// NewBot создаёт нового бота и подключает его к сервису как слой отображения
func NewBot(token string, service *app.IdentificationService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")

	b := newBot(api, service)
	service.SetPresenter(b)
	return b, nil
}

func newBot(api *tgbotapi.BotAPI, service *app.IdentificationService) *Bot {
	return &Bot{
		api:     api,
		service: service,
		http:    http.DefaultClient,
		outbox:  make(chan outgoing, outboxSize),
		stopped: make(chan struct{}),
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	defer close(b.stopped)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	go b.deliver(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// Present ставит состояние в очередь отправки. Вызывается сессией под её блокировкой,
// поэтому сеть здесь не трогаем.
func (b *Bot) Present(_ context.Context, chatID int64, state entity.SessionState) {
	select {
	case b.outbox <- outgoing{chatID: chatID, state: state}:
	case <-b.stopped:
	}
}

// deliver отправляет состояния в порядке их фиксации
func (b *Bot) deliver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-b.outbox:
			for _, c := range renderState(o.chatID, o.state) {
				b.send(c)
			}
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if fileID, name, contentType, ok := imageAttachment(msg); ok {
		b.handleImage(ctx, msg.Chat.ID, fileID, name, contentType)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "identify":
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "capture":
		if !b.service.CameraAvailable() {
			b.sendMessage(chatID, msgNoCamera)
			return
		}
		if _, err := b.service.IdentifyCamera(ctx, chatID); err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("capture not started")
		}

	case "share":
		text, err := b.service.ShareSummary(ctx, chatID)
		if errors.Is(err, app.ErrNothingToShare) {
			b.sendMessage(chatID, msgNothingToShare)
			return
		}
		if err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("share summary")
			b.sendMessage(chatID, entity.GenericErrorMessage)
			return
		}
		b.sendMessage(chatID, text)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleImage скачивает изображение и запускает распознавание
func (b *Bot) handleImage(ctx context.Context, chatID int64, fileID, name, contentType string) {
	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("download image")
		b.sendMessage(chatID, msgDownloadError)
		return
	}
	if len(data) == 0 {
		b.sendMessage(chatID, msgNoImage)
		return
	}

	file := imagefile.FromBytes(name, contentType, data)
	if _, err := b.service.IdentifyFile(ctx, chatID, file); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("identification not started")
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Error().Err(err).Msg("send telegram message")
	}
}

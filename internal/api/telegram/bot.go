package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	logging "github.com/ipfs/go-log"

	app "image-labeler/internal/application"
	"image-labeler/internal/container"
	"image-labeler/internal/domain/entity"
)

var log = logging.Logger("telegram")

const (
	msgStart = `👋 Привет! Я подписываю фотографии метками.

📸 Отправьте /label, а затем фото, и я расскажу, что на нём вижу.

📋 Команды:
/label — разметить фото
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /label
2️⃣ Отправьте фото (или изображение файлом)
3️⃣ Вы получите список меток с уверенностью

📋 Команды:
/label — разметить фото
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото для разметки."
	msgCancelled       = "❌ Операция отменена. Отправьте /label для новой разметки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото для разметки."
	msgLabelFirst      = "📋 Сначала отправьте /label, затем фото."
	msgCancelBusy      = "⏳ Фото уже обрабатывается, дождитесь результата."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается, подождите."
	msgNoLabels        = "🤷 Метки не найдены."
	msgLabelsHeader    = "🏷 Найденные метки:"
	msgRejected        = "⚠️ Этот файл не подходит: нужна картинка поддерживаемого формата и размера."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте позже."
)

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	users    *app.UserService
	labeling *app.LabelingService
	client   *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Infof("authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		users:    c.UserService,
		labeling: c.LabelingService,
		client:   http.DefaultClient,
	}, nil
}

// Run обрабатывает сообщения до отмены ctx. Каждое сообщение обрабатывается
// в своей горутине, чтобы медленный провайдер не задерживал другие чаты.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}

			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		// Файл с максимальным разрешением идёт последним
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg, photo.FileID, "image/jpeg")
		return
	}

	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		b.handleImage(ctx, msg, msg.Document.FileID, msg.Document.MimeType)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, msgStart)
		if _, err := b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID); err != nil {
			log.Errorf("failed to update user %d: %s", msg.From.ID, err)
		}

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "label":
		user, err := b.users.BeginLabel(ctx, msg.From.ID, msg.Chat.ID)
		b.reply(msg, user, err, msgAwaitingPhoto, msgBusy)

	case "cancel":
		user, err := b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		b.reply(msg, user, err, msgCancelled, msgCancelBusy)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// reply отвечает на смену состояния: busy, если фото ещё обрабатывается
func (b *Bot) reply(msg *tgbotapi.Message, user *entity.User, err error, ok, busy string) {
	switch {
	case err != nil:
		log.Errorf("failed to update user %d: %s", msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
	case user.Busy():
		b.sendMessage(msg.Chat.ID, busy)
	default:
		b.sendMessage(msg.Chat.ID, ok)
	}
}

// handleImage скачивает изображение и отвечает списком меток
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, fileID, mimeType string) {
	state, started, err := b.users.StartProcessing(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Errorf("failed to get user %d: %s", msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}
	if !started {
		b.sendMessage(msg.Chat.ID, refusalText(state))
		return
	}
	defer func() {
		if _, err := b.users.Finish(ctx, msg.From.ID, msg.Chat.ID); err != nil {
			log.Errorf("failed to reset user %d: %s", msg.From.ID, err)
		}
	}()

	b.sendMessage(msg.Chat.ID, msgProcessing)

	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.Errorf("error downloading photo: %s", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	labels, err := b.labeling.Detect(ctx, &entity.UploadedImage{
		FieldName: "photo",
		Filename:  fileID,
		MIMEType:  mimeType,
		Data:      data,
	})
	b.sendMessage(msg.Chat.ID, replyText(labels, err))
}

// refusalText объясняет, почему фото не принято
func refusalText(state entity.UserState) string {
	if state == entity.StateProcessing {
		return msgBusy
	}
	return msgLabelFirst
}

// replyText текст ответа на фото
func replyText(labels entity.LabelResult, err error) string {
	switch {
	case err == nil:
		return formatLabels(labels)
	case entity.IsClientInput(err):
		return msgRejected
	default:
		return msgProcessingError
	}
}

func formatLabels(labels entity.LabelResult) string {
	if len(labels) == 0 {
		return msgNoLabels
	}

	var b strings.Builder
	b.WriteString(msgLabelsHeader)
	for _, l := range labels {
		fmt.Fprintf(&b, "\n• %s (%s)", l.Description, l.Percent())
	}
	return b.String()
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

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("download file: unexpected status " + resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Errorf("error sending message: %s", err)
	}
}

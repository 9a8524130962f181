package message

import (
	"OCRVisionPro/internal/adapter/localconversation"
	"OCRVisionPro/internal/ai"
	"OCRVisionPro/internal/mode"
	"OCRVisionPro/internal/service/image"
	"fmt"
)

// Assemble собирает список сообщений для одного вызова модели.
//
// Для одноразовых режимов — одно сообщение пользователя [prompt, img].
// Для чата prompt — новый текст пользователя, картинка берётся из conv, а conv — история до него:
// если пользователь ещё ничего не писал, уходит одно сообщение [текст, картинка] (приветствие не отправляется);
// иначе вся история по порядку, картинка прикреплена только к первой реплике пользователя,
// и в конце новый текст без картинки.
func Assemble(m mode.Mode, prompt string, img *image.Ref, conv *localconversation.Conversation) ([]ai.Message, error) {
	switch m {
	case mode.SingleShotExtract, mode.DocumentQuery, mode.VisualQA:
		if img == nil {
			return nil, image.ErrMissingImage
		}
		return []ai.Message{{Role: ai.RoleUser, Text: prompt, ImageURL: img.DataURL()}}, nil
	case mode.Chat:
		if conv == nil || conv.Image == nil {
			return nil, image.ErrMissingImage
		}
		dataURL := conv.Image.DataURL()
		first := conv.FirstUserIndex()
		if first < 0 {
			return []ai.Message{{Role: ai.RoleUser, Text: prompt, ImageURL: dataURL}}, nil
		}
		turns := conv.Turns()
		msgs := make([]ai.Message, 0, len(turns)+1)
		for i, t := range turns {
			msg := ai.Message{Role: t.Role, Text: t.Text}
			if i == first {
				msg.ImageURL = dataURL
			}
			msgs = append(msgs, msg)
		}
		msgs = append(msgs, ai.Message{Role: ai.RoleUser, Text: prompt})
		return msgs, nil
	default:
		return nil, fmt.Errorf("assemble: %w: %d", mode.ErrUnknownMode, int(m))
	}
}

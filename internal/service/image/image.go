package image

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrInvalidInput — пустое или неподдерживаемое изображение.
	ErrInvalidInput = errors.New("invalid image input")
	// ErrMissingImage — изображение ещё не загружено.
	ErrMissingImage = errors.New("image is not uploaded")
)

// Поддерживаемые форматы загрузки.
var supportedTypes = []string{"image/png", "image/jpeg"}

// Ref — загруженное изображение. После создания не меняется.
type Ref struct {
	data     []byte
	mimeType string
	name     string
}

// New создаёт ссылку на изображение. Байты копируются.
func New(data []byte, mimeType string, name string) (*Ref, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		return nil, fmt.Errorf("%w: empty mime type", ErrInvalidInput)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Ref{data: buf, mimeType: mimeType, name: strings.TrimSpace(name)}, nil
}

// FromUpload проверяет реальный тип содержимого и принимает только PNG/JPEG.
// Заявленный клиентом Content-Type не учитывается.
func FromUpload(data []byte, name string) (*Ref, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidInput)
	}
	mt := Detect(data)
	if !mimetype.EqualsAny(mt, supportedTypes...) {
		return nil, fmt.Errorf("%w: unsupported type %s", ErrInvalidInput, mt)
	}
	return New(data, mt, name)
}

// Detect определяет MIME по сигнатуре файла.
func Detect(data []byte) string {
	return mimetype.Detect(data).String()
}

// DataURL кодирует изображение в data URL: data:<mime>;base64,<payload>.
func (r *Ref) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", r.mimeType, base64.StdEncoding.EncodeToString(r.data))
}

func (r *Ref) MimeType() string { return r.mimeType }

func (r *Ref) Name() string { return r.name }

func (r *Ref) Size() int { return len(r.data) }

// Bytes возвращает копию содержимого (для предпросмотра).
func (r *Ref) Bytes() []byte {
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

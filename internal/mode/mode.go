package mode

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode возвращается, если имя режима или типа контента не распознано.
var ErrUnknownMode = errors.New("unknown mode")

// Mode — один из четырёх независимых режимов работы с изображением.
type Mode int

const (
	SingleShotExtract Mode = iota // распознавание по фиксированному шаблону
	DocumentQuery                 // вопрос к документу
	VisualQA                      // вопрос к произвольному изображению
	Chat                          // многоходовой диалог по изображению
)

// All перечисляет режимы в порядке вкладок интерфейса.
var All = [...]Mode{SingleShotExtract, DocumentQuery, VisualQA, Chat}

func (m Mode) String() string {
	switch m {
	case SingleShotExtract:
		return "extract"
	case DocumentQuery:
		return "document"
	case VisualQA:
		return "vqa"
	case Chat:
		return "chat"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Title — заголовок вкладки.
func (m Mode) Title() string {
	switch m {
	case SingleShotExtract:
		return "General OCR & Content Recognition"
	case DocumentQuery:
		return "Advanced Document Intelligence"
	case VisualQA:
		return "Intelligent Visual Question Answering"
	case Chat:
		return "Multi-modal Chat Assistant"
	default:
		return m.String()
	}
}

// NeedsQuestion сообщает, требует ли режим непустой вопрос перед отправкой.
func (m Mode) NeedsQuestion() bool {
	return m == DocumentQuery || m == VisualQA
}

// Valid проверяет, что значение входит в закрытый набор режимов.
func (m Mode) Valid() bool {
	return m >= SingleShotExtract && m <= Chat
}

// Parse разбирает имя режима (extract|document|vqa|chat).
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "extract", "ocr":
		return SingleShotExtract, nil
	case "document", "doc":
		return DocumentQuery, nil
	case "vqa":
		return VisualQA, nil
	case "chat":
		return Chat, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// ContentType — что именно извлекать в режиме SingleShotExtract.
type ContentType int

const (
	GeneralText ContentType = iota
	LatexEquation
	CodeSnippet
	ChartDescription
)

// ContentTypes перечисляет типы контента в порядке переключателя интерфейса.
var ContentTypes = [...]ContentType{GeneralText, LatexEquation, CodeSnippet, ChartDescription}

func (c ContentType) String() string {
	switch c {
	case GeneralText:
		return "text"
	case LatexEquation:
		return "latex"
	case CodeSnippet:
		return "code"
	case ChartDescription:
		return "chart"
	default:
		return fmt.Sprintf("content(%d)", int(c))
	}
}

// Label — подпись для переключателя.
func (c ContentType) Label() string {
	switch c {
	case GeneralText:
		return "General Text Extraction"
	case LatexEquation:
		return "LaTeX Equation Conversion"
	case CodeSnippet:
		return "Code Snippet Extraction"
	case ChartDescription:
		return "Chart/Diagram Description"
	default:
		return c.String()
	}
}

// ParseContentType разбирает имя типа контента; пустая строка — GeneralText.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return GeneralText, nil
	case "latex":
		return LatexEquation, nil
	case "code":
		return CodeSnippet, nil
	case "chart":
		return ChartDescription, nil
	}
	return 0, fmt.Errorf("%w: content type %q", ErrUnknownMode, s)
}

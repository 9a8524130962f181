package render

import (
	"OCRVisionPro/internal/mode"
	"OCRVisionPro/internal/service/state"
	"strings"
)

// BlockKind — способ отображения блока на странице.
type BlockKind string

const (
	Markdown BlockKind = "markdown"
	Code     BlockKind = "code"
	Math     BlockKind = "math"
	Error    BlockKind = "error"
)

type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
	Lang string    `json:"lang,omitempty"`
}

type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// View — всё, что нужно странице для отображения одного режима.
type View struct {
	Mode        string  `json:"mode"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	ContentType string  `json:"content_type,omitempty"`
	Question    string  `json:"question,omitempty"`
	HasImage    bool    `json:"has_image"`
	ImageName   string  `json:"image_name,omitempty"`
	Heading     string  `json:"heading,omitempty"`
	Blocks      []Block `json:"blocks"`
	Transcript  []Turn  `json:"transcript,omitempty"`
}

// Render — чистая функция от снимка слота.
func Render(s state.Snapshot) View {
	v := View{
		Mode:     s.Mode.String(),
		Title:    s.Mode.Title(),
		Status:   s.Status.String(),
		Question: s.Question,
		HasImage: s.Image != nil,
		Blocks:   []Block{},
	}
	if s.Image != nil {
		v.ImageName = s.Image.Name()
	}
	if s.Mode == mode.SingleShotExtract {
		v.ContentType = s.ContentType.String()
	}

	if s.Mode == mode.Chat {
		for _, t := range s.Turns {
			v.Transcript = append(v.Transcript, Turn{Role: string(t.Role), Text: t.Text})
		}
		return v
	}

	switch s.Status {
	case state.Resolved:
		v.Heading = heading(s.Mode)
		v.Blocks = resultBlocks(s.Mode, s.ResultType, s.Result)
	case state.Failed:
		v.Blocks = []Block{{Kind: Error, Text: s.Result}}
	}
	return v
}

func heading(m mode.Mode) string {
	if m == mode.SingleShotExtract {
		return "Result"
	}
	return "Answer"
}

func resultBlocks(m mode.Mode, ct mode.ContentType, text string) []Block {
	if m != mode.SingleShotExtract {
		return []Block{{Kind: Markdown, Text: text}}
	}
	switch ct {
	case mode.LatexEquation:
		raw, _ := StripCodeFences(text)
		return []Block{
			{Kind: Code, Text: raw, Lang: "latex"},
			{Kind: Math, Text: CleanLatex(raw)},
		}
	case mode.CodeSnippet:
		code, lang := StripCodeFences(text)
		if lang == "" {
			lang = "text"
		}
		return []Block{{Kind: Code, Text: code, Lang: lang}}
	default:
		return []Block{{Kind: Markdown, Text: text}}
	}
}

// пары разделителей формулы; $$ проверяется раньше $
var latexDelimiters = [][2]string{{"$$", "$$"}, {`\[`, `\]`}, {`\(`, `\)`}, {"$", "$"}}

// CleanLatex снимает одну внешнюю пару математических разделителей.
// Содержимое формулы (\$, \\[4pt] и т.п.) не трогается.
func CleanLatex(s string) string {
	s = strings.TrimSpace(s)
	for _, d := range latexDelimiters {
		open, closing := d[0], d[1]
		if len(s) >= len(open)+len(closing) && strings.HasPrefix(s, open) && strings.HasSuffix(s, closing) {
			return strings.TrimSpace(s[len(open) : len(s)-len(closing)])
		}
	}
	return s
}

// StripCodeFences снимает обрамление ```lang ... ``` и возвращает код и язык.
// Текст без обрамления возвращается обрезанным, язык пустой.
func StripCodeFences(s string) (string, string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s, ""
	}
	body := strings.TrimPrefix(s, "```")
	lang := ""
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		lang = strings.TrimSpace(body[:i])
		body = body[i+1:]
	} else {
		// всё в одной строке: ```code```
		body = strings.TrimSuffix(body, "```")
		return strings.TrimSpace(body), ""
	}
	body = strings.TrimRight(body, " \t\r\n")
	body = strings.TrimSuffix(body, "```")
	return strings.TrimRight(body, " \t\r\n"), lang
}

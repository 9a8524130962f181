package prompt

import (
	"OCRVisionPro/internal/mode"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyQuestion — режиму нужен вопрос, а пришла пустая строка.
var ErrEmptyQuestion = errors.New("question is empty")

const (
	generalTextPrompt = `Analyze the text in the provided image. Extract all readable content and present it in a structured Markdown format that is clear, concise, and well-organized. Ensure proper formatting (e.g., headings, lists, or code blocks) as necessary to represent the content effectively.`

	latexPrompt = `Understand the mathematical equation in the provided image and output the corresponding LaTeX code. NEVER include any additional text or explanations. DON'T add dollar signs ($) around the LaTeX code. DO NOT extract simplified versions of the equations. NEVER add documentclass, packages or begindocument. DO NOT explain the symbols used in the equation. Output only the LaTeX code corresponding to the mathematical equations in the image.`

	codePrompt = `Extract all code from the provided image. Present the code in a formatted code block suitable for direct use. Do not include any additional text or explanations.`

	chartPrompt = `Describe the chart or diagram in the provided image. Explain its key elements, data, and any trends or insights it presents in a clear, concise manner.`

	documentTemplate = "Analyze the provided document image and respond to the following request: %s. Present the answer in a clear, structured Markdown format."

	visualTemplate = "Based on the provided image, answer the following question: %s"
)

// Params — параметры режима. ContentType используется только в SingleShotExtract,
// Question — в DocumentQuery, VisualQA и Chat (текст реплики).
type Params struct {
	ContentType mode.ContentType
	Question    string
}

// Build возвращает текст инструкции, отправляемый вместе с изображением.
func Build(m mode.Mode, p Params) (string, error) {
	switch m {
	case mode.SingleShotExtract:
		return extractPrompt(p.ContentType)
	case mode.DocumentQuery:
		q, err := question(p.Question)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(documentTemplate, q), nil
	case mode.VisualQA:
		q, err := question(p.Question)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(visualTemplate, q), nil
	case mode.Chat:
		// В чате инструкцией служит сама реплика пользователя.
		if _, err := question(p.Question); err != nil {
			return "", err
		}
		return p.Question, nil
	}
	return "", fmt.Errorf("%w: %d", mode.ErrUnknownMode, int(m))
}

func extractPrompt(ct mode.ContentType) (string, error) {
	switch ct {
	case mode.GeneralText:
		return generalTextPrompt, nil
	case mode.LatexEquation:
		return latexPrompt, nil
	case mode.CodeSnippet:
		return codePrompt, nil
	case mode.ChartDescription:
		return chartPrompt, nil
	}
	return "", fmt.Errorf("%w: content type %d", mode.ErrUnknownMode, int(ct))
}

func question(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrEmptyQuestion
	}
	return q, nil
}

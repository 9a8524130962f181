package render

import (
	"OCRVisionPro/internal/adapter/localconversation"
	"OCRVisionPro/internal/ai"
	"OCRVisionPro/internal/mode"
	"OCRVisionPro/internal/service/image"
	"OCRVisionPro/internal/service/state"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(m mode.Mode, ct mode.ContentType, result string) state.Snapshot {
	return state.Snapshot{Mode: m, Status: state.Resolved, ContentType: ct, ResultType: ct, Result: result}
}

func TestRenderLatexScenario(t *testing.T) {
	v := Render(resolved(mode.SingleShotExtract, mode.LatexEquation, "x^2+y^2=z^2"))

	require.Len(t, v.Blocks, 2)
	assert.Equal(t, Block{Kind: Code, Text: "x^2+y^2=z^2", Lang: "latex"}, v.Blocks[0])
	assert.Equal(t, Block{Kind: Math, Text: "x^2+y^2=z^2"}, v.Blocks[1])
	assert.Equal(t, "Result", v.Heading)
	assert.Equal(t, "latex", v.ContentType)
}

func TestRenderLatexStripsDelimiters(t *testing.T) {
	for _, in := range []string{`\[ E = mc^2 \]`, "$$E = mc^2$$", "$E = mc^2$", "```latex\n\\[E = mc^2\\]\n```"} {
		v := Render(resolved(mode.SingleShotExtract, mode.LatexEquation, in))
		require.Len(t, v.Blocks, 2, in)
		assert.Equal(t, "E = mc^2", v.Blocks[1].Text, in)
		assert.NotContains(t, v.Blocks[1].Text, "$")
	}
}

func TestCleanLatexKeepsInnerDelimiters(t *testing.T) {
	cases := map[string]string{
		`\text{cost} = \$5`:             `\text{cost} = \$5`,
		`$\text{cost} = \$5$`:           `\text{cost} = \$5`,
		`\[ a \\[4pt] b \]`:             `a \\[4pt] b`,
		`\begin{aligned} a \\[4pt] b`:   `\begin{aligned} a \\[4pt] b`,
		`$$ f(x) = \left( x \right) $$`: `f(x) = \left( x \right)`,
		`\( x^2 \)`:                     `x^2`,
		`  E = mc^2  `:                  `E = mc^2`,
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanLatex(in), in)
	}
}

func TestRenderCodeSnippet(t *testing.T) {
	v := Render(resolved(mode.SingleShotExtract, mode.CodeSnippet, "```python\nprint('hi')\n```\n"))
	require.Len(t, v.Blocks, 1)
	assert.Equal(t, Block{Kind: Code, Text: "print('hi')", Lang: "python"}, v.Blocks[0])

	v = Render(resolved(mode.SingleShotExtract, mode.CodeSnippet, "x := 1"))
	assert.Equal(t, Block{Kind: Code, Text: "x := 1", Lang: "text"}, v.Blocks[0])
}

func TestRenderUsesResultContentType(t *testing.T) {
	snap := resolved(mode.SingleShotExtract, mode.CodeSnippet, "plain **markdown**")
	snap.ResultType = mode.GeneralText

	v := Render(snap)
	assert.Equal(t, "code", v.ContentType)
	assert.Equal(t, []Block{{Kind: Markdown, Text: "plain **markdown**"}}, v.Blocks)
}

func TestRenderQuestionModes(t *testing.T) {
	for _, m := range []mode.Mode{mode.DocumentQuery, mode.VisualQA} {
		snap := resolved(m, mode.GeneralText, "## Answer\n- a")
		snap.Question = "what?"
		v := Render(snap)
		assert.Equal(t, "Answer", v.Heading)
		assert.Equal(t, "what?", v.Question)
		assert.Empty(t, v.ContentType)
		assert.Equal(t, []Block{{Kind: Markdown, Text: "## Answer\n- a"}}, v.Blocks)
	}
}

func TestRenderFailed(t *testing.T) {
	err := &ai.TransportError{StatusCode: 401, Message: "No auth credentials found"}
	v := Render(state.Snapshot{Mode: mode.VisualQA, Status: state.Failed, Result: err.Error()})

	assert.Equal(t, "failed", v.Status)
	require.Len(t, v.Blocks, 1)
	assert.Equal(t, Error, v.Blocks[0].Kind)
	assert.Contains(t, v.Blocks[0].Text, "401")
}

func TestRenderPendingAndEmptyHaveNoBlocks(t *testing.T) {
	for _, st := range []state.Status{state.Empty, state.InputReady, state.Pending} {
		v := Render(state.Snapshot{Mode: mode.DocumentQuery, Status: st, Result: "stale"})
		assert.NotNil(t, v.Blocks)
		assert.Empty(t, v.Blocks, st.String())
	}
}

func TestRenderChatTranscript(t *testing.T) {
	img, err := image.New([]byte{1}, "image/png", "car.png")
	require.NoError(t, err)
	conv := localconversation.New(img, "Hello!")
	conv.AppendUser("What color?")
	conv.AppendAssistant("Red.")

	v := Render(state.Snapshot{Mode: mode.Chat, Status: state.Resolved, Image: img, Result: "Red.", Turns: conv.Turns()})
	assert.True(t, v.HasImage)
	assert.Equal(t, "car.png", v.ImageName)
	assert.Empty(t, v.Blocks)
	assert.Equal(t, []Turn{
		{Role: "assistant", Text: "Hello!"},
		{Role: "user", Text: "What color?"},
		{Role: "assistant", Text: "Red."},
	}, v.Transcript)
}

func TestStripCodeFences(t *testing.T) {
	code, lang := StripCodeFences("```go\nfunc main() {}\n```")
	assert.Equal(t, "func main() {}", code)
	assert.Equal(t, "go", lang)

	code, lang = StripCodeFences("```a = 1```")
	assert.Equal(t, "a = 1", code)
	assert.Empty(t, lang)
}

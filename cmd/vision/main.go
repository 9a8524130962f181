package main

import (
	"OCRVisionPro/internal/ai"
	"OCRVisionPro/internal/config"
	"OCRVisionPro/internal/mode"
	"OCRVisionPro/internal/service/render"
	"OCRVisionPro/internal/service/state"
	"OCRVisionPro/internal/service/vision"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Одноразовый запрос из командной строки:
//
//	vision -image equation.png -content latex
//	vision -image invoice.jpg -mode document -question "What is the total?"
func main() {
	imagePath := flag.String("image", "", "путь к PNG/JPEG изображению")
	modeName := flag.String("mode", "extract", "режим: extract|document|vqa|chat")
	contentName := flag.String("content", "text", "тип контента для extract: text|latex|code|chart")
	question := flag.String("question", "", "вопрос для document/vqa или реплика для chat")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	m, err := mode.Parse(*modeName)
	if err != nil {
		sugar.Fatalw("bad mode", "error", err)
	}
	ct, err := mode.ParseContentType(*contentName)
	if err != nil {
		sugar.Fatalw("bad content type", "error", err)
	}
	data, err := os.ReadFile(*imagePath)
	if err != nil {
		sugar.Fatalw("failed to read image file", "path", *imagePath, "error", err)
	}

	var client vision.ModelClient = ai.NewVisionClient(cfg, sugar)
	if cfg.UseStubClient {
		client = ai.NewStubClient()
	}
	svc := vision.NewService(client, sugar)

	ws := state.New("")
	ws.SetCredential(os.Getenv("OPENROUTER_API_KEY"))
	if _, err := svc.UploadImage(ws, m, data, filepath.Base(*imagePath)); err != nil {
		sugar.Fatalw("image rejected", "error", err)
	}
	if _, err := svc.SetInput(ws, m, ct, *question); err != nil {
		sugar.Fatalw("bad input", "error", err)
	}

	ctx := context.Background()
	var view render.View
	if m == mode.Chat {
		view, err = svc.Chat(ctx, ws, *question)
	} else {
		view, err = svc.Submit(ctx, ws, m)
	}
	if err != nil {
		sugar.Fatalw("request not sent", "error", err)
	}

	if view.Mode == mode.Chat.String() && len(view.Transcript) > 0 {
		fmt.Println(view.Transcript[len(view.Transcript)-1].Text)
	}
	for _, b := range view.Blocks {
		switch b.Kind {
		case render.Code:
			fmt.Printf("```%s\n%s\n```\n", b.Lang, b.Text)
		case render.Math:
			// в терминале формулу не отрисовать, хватает блока кода
		default:
			fmt.Println(b.Text)
		}
	}
	if view.Status == state.Failed.String() {
		os.Exit(1)
	}
}

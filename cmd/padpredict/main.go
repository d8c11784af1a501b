// Command padpredict sends one image to the prediction service and prints the
// label, the same way the pad does when Predict is pressed.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image/png"
	"net/http"
	"os"
	"time"

	"inkpad/internal/datauri"
	"inkpad/predict"
	"inkpad/surface"
)

func main() {
	var (
		endpoint = flag.String("endpoint", predict.DefaultEndpoint, "Prediction endpoint URL.")
		inPath   = flag.String("in", "", "PNG image to submit.")
		blank    = flag.Bool("blank", false, "Submit a blank canvas instead of -in.")
		timeout  = flag.Duration("timeout", 30*time.Second, "Request timeout (0 = none).")
	)
	flag.Parse()

	if (*inPath == "") == !*blank {
		fatalf("usage: padpredict [-endpoint URL] (-in image.png | -blank)")
	}

	uri, err := loadImage(*inPath, *blank)
	if err != nil {
		fatalf("image: %v", err)
	}
	client, err := predict.NewClient(*endpoint, &http.Client{Timeout: *timeout})
	if err != nil {
		fatalf("%v", err)
	}
	resp, err := client.Predict(context.Background(), &predict.Request{Image: uri})
	if err != nil {
		fatalf("predict: %v", err)
	}
	fmt.Println(resp.Prediction.String())
}

func loadImage(path string, blank bool) (string, error) {
	if blank {
		s, err := surface.New(surface.DefaultSize, 1, surface.DefaultStyle())
		if err != nil {
			return "", err
		}
		return s.ExportImage()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%s: not a PNG: %w", path, err)
	}
	return datauri.Encode("image/png", data), nil
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

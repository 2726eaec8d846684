// Command analyze uploads a weapon screenshot and prints the extracted stats.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"craftnexus/internal/analysisclient"

	"github.com/gorilla/websocket"
)

func main() {
	api := flag.String("api", "http://localhost:8375/api", "API base URL")
	token := flag.String("token", os.Getenv("CRAFTNEXUS_TOKEN"), "Bearer token (defaults to $CRAFTNEXUS_TOKEN)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Give up after this long")
	watch := flag.Bool("watch", false, "Also print realtime job events from the websocket")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *token == "" {
		log.Fatal("A token is required (-token or CRAFTNEXUS_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open image: %v", err)
	}
	defer func() { _ = f.Close() }()

	client := analysisclient.New(*api, *token)
	job, err := client.Submit(ctx, f.Name(), f)
	if err != nil {
		log.Fatalf("Upload failed: %v", err)
	}
	log.Printf("Queued job %s", job.ID)

	if *watch {
		go watchEvents(ctx, *api, *token)
	}

	job, err = client.Wait(ctx, job.ID)
	switch {
	case errors.Is(err, analysisclient.ErrAnalysisFailed):
		log.Fatalf("Analysis failed: %s", job.Error)
	case err != nil:
		log.Fatalf("Waiting for job: %v", err)
	}

	out, _ := json.MarshalIndent(job.Result, "", "  ")
	fmt.Println(string(out))
}

// watchEvents logs every message the server pushes until ctx is done.
func watchEvents(ctx context.Context, api, token string) {
	u, err := url.Parse(api)
	if err != nil {
		log.Printf("watch: bad api url: %v", err)
		return
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()

	c, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		log.Printf("watch: dial failed: %v", err)
		return
	}
	defer func() { _ = c.Close() }()

	go func() {
		<-ctx.Done()
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = c.Close()
	}()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}
		var event struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if json.Unmarshal(msg, &event) != nil {
			log.Printf("event: %s", msg)
			continue
		}
		log.Printf("event %s: %s", event.Type, event.Payload)
	}
}

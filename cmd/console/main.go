package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	ServerURL string
	Timeout   time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		ServerURL: getEnv("SERVER_URL", "http://localhost:3000"),
		Timeout:   30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.ServerURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to the relay. Please ensure the server is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	username := promptLine(reader, "Character name: ")
	if username == "" {
		fmt.Fprintf(os.Stderr, "A character name is required\n")
		os.Exit(1)
	}

	class := promptLine(reader, "Class [Adventurer]: ")

	maxHP := 10
	if raw := promptLine(reader, "Max HP [10]: "); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "Invalid max HP: %q\n", raw)
			os.Exit(1)
		}
		maxHP = n
	}

	ws, err := newWSClient(wsURL(cfg.ServerURL))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer ws.close()

	p := tea.NewProgram(NewConsoleUI(ws, username, class, maxHP),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusServiceUnavailable
}

// wsURL derives the WebSocket endpoint from the HTTP base URL.
func wsURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/ws"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/ws"
	}
	return baseURL + "/ws"
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

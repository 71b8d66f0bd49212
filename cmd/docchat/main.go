// docchat is a small terminal client for the docchat API.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

var (
	apiURL = flag.String("api-url", "http://localhost:8001/api/v1", "docchat API base URL")
	chatID = flag.String("chat", "", "Existing chat id to continue (optional)")
)

type chatRequest struct {
	ChatID  string `json:"chatId,omitempty"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response  string `json:"response"`
	ChatID    string `json:"chatId"`
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
	Sources   []struct {
		DocName string `json:"docName"`
	} `json:"sources"`
	Error string `json:"error"`
}

func main() {
	_ = godotenv.Load()
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Minute}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Println(boldGreen("docchat terminal client"))
	fmt.Printf("API: %s\n", boldCyan(*apiURL))
	fmt.Println("Type your question and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	currentChat := *chatID

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := scanner.Text()

		if strings.ToLower(strings.TrimSpace(input)) == "exit" {
			break
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		resp, err := send(client, *apiURL, chatRequest{ChatID: currentChat, Message: input})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Println("Make sure the docchat API is running.")
			continue
		}

		if currentChat == "" {
			currentChat = resp.ChatID
			fmt.Println(faint("chat id: " + currentChat))
		}

		fmt.Print(boldCyan("Assistant: "))
		fmt.Println(resp.Response)
		if len(resp.Sources) > 0 {
			names := make([]string, 0, len(resp.Sources))
			for _, s := range resp.Sources {
				names = append(names, s.DocName)
			}
			fmt.Println(faint("sources: " + strings.Join(names, ", ")))
		}
		fmt.Println()
	}
}

func send(client *http.Client, baseURL string, req chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpResp, err := client.Post(baseURL+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unexpected response: %s", data)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, out.Error)
	}
	return &out, nil
}

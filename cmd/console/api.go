package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/chat"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type createSessionRequest struct {
	Name         string      `json:"name"`
	CharacterIDs []uuid.UUID `json:"character_ids,omitempty"`
}

func decodeError(body []byte, statusCode int) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("%s", errResp.Error)
	}
	return fmt.Errorf("unexpected status %d", statusCode)
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode == http.StatusOK
}

func createCharacter(client *http.Client, baseURL string, spec *actor.CharacterSpec) (*actor.CharacterSpec, error) {
	reqBody, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal character: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/characters", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeError(body, resp.StatusCode)
	}

	var created actor.CharacterSpec
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character: %w", err)
	}
	return &created, nil
}

func createSession(client *http.Client, baseURL string, name string, characterIDs []uuid.UUID) (*session.GameSession, error) {
	reqBody, err := json.Marshal(createSessionRequest{Name: name, CharacterIDs: characterIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/sessions", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeError(body, resp.StatusCode)
	}

	var gs session.GameSession
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &gs, nil
}

func getSession(client *http.Client, baseURL string, id uuid.UUID) (*session.GameSession, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(body, resp.StatusCode)
	}

	var gs session.GameSession
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &gs, nil
}

func sendTurn(client *http.Client, baseURL string, req chat.TurnRequest) (*chat.TurnResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/chat", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var turnResp chat.TurnResponse
	if err := json.Unmarshal(body, &turnResp); err != nil {
		return nil, decodeError(body, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK && turnResp.Error == "" {
		return nil, decodeError(body, resp.StatusCode)
	}
	return &turnResp, nil
}

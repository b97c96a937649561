package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/mwisniewski/tale-engine/internal/config"
	"github.com/mwisniewski/tale-engine/pkg/actor"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	consoleCfg := &ConsoleConfig{
		APIBaseURL: cfg.APIURL,
		Timeout:    90 * time.Second,
	}

	client := &http.Client{
		Timeout: consoleCfg.Timeout,
	}

	if !testConnection(client, consoleCfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Tale Engine")
	fmt.Println()

	spec := promptCharacter(reader)
	created, err := createCharacter(client, consoleCfg.APIBaseURL, spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create character: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Character ready: %s, Level %d %s %s\n\n", created.Name, created.Level, created.Race, created.Class)

	fmt.Print("Session name (enter for default): ")
	sessionName, _ := reader.ReadString('\n')
	sessionName = strings.TrimSpace(sessionName)
	if sessionName == "" {
		sessionName = fmt.Sprintf("%s's adventure", created.Name)
	}

	gs, err := createSession(client, consoleCfg.APIBaseURL, sessionName, []uuid.UUID{created.ID})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(consoleCfg, client, gs, created),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func promptCharacter(reader *bufio.Reader) *actor.CharacterSpec {
	readLine := func(prompt, fallback string) string {
		fmt.Print(prompt)
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			return fallback
		}
		return line
	}

	name := readLine("Character name: ", "Bezimienny")
	class := readLine("Class (e.g. Wojownik, Mag, Łotrzyk): ", "Wojownik")
	race := readLine("Race (e.g. Człowiek, Elf, Krasnolud): ", "Człowiek")

	return &actor.CharacterSpec{
		Name:  name,
		Class: class,
		Race:  race,
		Level: 1,
		HP:    12,
		MaxHP: 12,
		AC:    14,
		Stats: actor.Stats5e{
			Strength:     14,
			Dexterity:    12,
			Constitution: 13,
			Intelligence: 10,
			Wisdom:       11,
			Charisma:     10,
		},
	}
}

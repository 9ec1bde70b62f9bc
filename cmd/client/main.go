package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/davidola36/run-game/internal/config"
	"github.com/davidola36/run-game/internal/protocol"
	"github.com/davidola36/run-game/internal/session"
)

// A headless relay client for exercising multiplayer sessions from a
// terminal: create or join a room, push position updates, negotiate a
// rematch.
func main() {
	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	conf := config.MustLoad(filepath.Join(baseDir, "./config.yml"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	manager := session.New(logger, conf.Session.RelayURL, session.Policy{
		MaxAttempts:    conf.Session.MaxAttempts,
		ReconnectDelay: conf.Session.ReconnectDelay,
	}, nil, session.Callbacks{
		OnGameStart: func() {
			fmt.Println(">> game started")
		},
		OnGameRestart: func() {
			fmt.Println(">> rematch accepted, game restarting")
		},
		OnGameEnd: func(reason string) {
			fmt.Printf(">> game ended: %s\n", reason)
		},
		OnShowRoomCode: func(code string) {
			fmt.Printf(">> room code: %s\n", code)
		},
		OnShowPlayAgainPrompt: func(playerID string) {
			fmt.Printf(">> player %s wants a rematch (accept/decline)\n", playerID)
		},
		OnOpponentUpdate: func(playerID string, state session.OpponentState) {
			fmt.Printf(">> opponent %s at (%.1f, %.1f, %.1f) %s score=%d\n",
				playerID, state.Position.X, state.Position.Y, state.Position.Z, state.Animation, state.Score)
		},
		OnOpponentLeft: func(playerID string) {
			fmt.Printf(">> opponent %s left\n", playerID)
		},
	})
	defer manager.Dispose()

	manager.Connect()
	fmt.Printf("connecting to %s\n", conf.Session.RelayURL)
	fmt.Println("commands: create | join <code> | update <x> <y> <z> [animation] | over <score> | rematch | accept | decline | result <score> | quit")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-interrupt:
			fmt.Println("bye")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := handleCommand(manager, line); quit {
				return
			}
		}
	}
}

func handleCommand(manager *session.Manager, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "create":
		if err := manager.CreateRoom(); err != nil {
			fmt.Printf("create failed: %v\n", err)
		}
	case "join":
		if len(fields) < 2 {
			fmt.Println("usage: join <code>")
			return false
		}
		if err := manager.JoinRoom(fields[1]); err != nil {
			fmt.Printf("join failed: %v\n", err)
		}
	case "update":
		if len(fields) < 4 {
			fmt.Println("usage: update <x> <y> <z> [animation]")
			return false
		}
		x, _ := strconv.ParseFloat(fields[1], 64)
		y, _ := strconv.ParseFloat(fields[2], 64)
		z, _ := strconv.ParseFloat(fields[3], 64)
		animation := "Run"
		if len(fields) > 4 {
			animation = fields[4]
		}
		manager.SendPlayerUpdate(protocol.Vector3{X: x, Y: y, Z: z}, animation, 0)
	case "over":
		if len(fields) < 2 {
			fmt.Println("usage: over <score>")
			return false
		}
		score, _ := strconv.Atoi(fields[1])
		manager.SendGameOver(score)
	case "rematch":
		manager.RequestPlayAgain()
	case "accept":
		manager.AcceptPlayAgain()
	case "decline":
		manager.DeclinePlayAgain()
	case "result":
		if len(fields) < 2 {
			fmt.Println("usage: result <score>")
			return false
		}
		score, _ := strconv.Atoi(fields[1])
		fmt.Println(manager.Result(score))
	case "quit", "exit":
		return true
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}

	return false
}

// Interactive command-line chat client for manual testing against a
// running server. Type messages to send them; /join <room> switches
// rooms, /rooms lists them.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ollamachat/chathub/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "general", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(inbound proto.Inbound) {
		if writeErr := wsjson.Write(ctx, conn, inbound); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	join := func(room string) error {
		payload, err := json.Marshal(proto.JoinData{Username: *user, Room: room})
		if err != nil {
			return fmt.Errorf("marshal join: %w", err)
		}
		send(proto.Inbound{Type: proto.InboundTypeJoin, Data: payload})
		return nil
	}

	if err := join(*room); err != nil {
		return err
	}

	go func() {
		for {
			var outbound struct {
				Type  string          `json:"type"`
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
				Error *proto.Error    `json:"error"`
			}
			if err := wsjson.Read(ctx, conn, &outbound); err != nil {
				cancel()
				return
			}

			switch {
			case outbound.Error != nil:
				fmt.Printf("! error [%s]: %s\n", outbound.Error.Code, outbound.Error.Msg)
			case outbound.Event == "message":
				var msg proto.EventMessage
				if json.Unmarshal(outbound.Data, &msg) == nil {
					fmt.Printf("[%s] %s: %s\n", msg.Kind, msg.Username, msg.Text)
				}
			case outbound.Event == "user_joined":
				var ev proto.EventUserJoined
				if json.Unmarshal(outbound.Data, &ev) == nil {
					fmt.Printf("* %s joined\n", ev.Username)
				}
			case outbound.Event == "user_left":
				var ev proto.EventUserLeft
				if json.Unmarshal(outbound.Data, &ev) == nil {
					fmt.Printf("* %s left\n", ev.Username)
				}
			case outbound.Event == "room_info":
				var info proto.EventRoomInfo
				if json.Unmarshal(outbound.Data, &info) == nil {
					fmt.Printf("* room %s (%d): %s\n", info.Room, info.UserCount, strings.Join(info.Users, ", "))
				}
			case outbound.Event == "rooms_list":
				var rooms map[string]proto.RoomSummary
				if json.Unmarshal(outbound.Data, &rooms) == nil {
					for name, summary := range rooms {
						fmt.Printf("* %s: %d user(s)\n", name, summary.UserCount)
					}
				}
			case outbound.Event == "status":
				var status proto.StatusData
				if json.Unmarshal(outbound.Data, &status) == nil {
					fmt.Printf("* %s\n", status.Msg)
				}
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/rooms":
			send(proto.Inbound{Type: proto.InboundTypeGetRooms})
		case strings.HasPrefix(line, "/join "):
			if err := join(strings.TrimSpace(strings.TrimPrefix(line, "/join "))); err != nil {
				return err
			}
		case line == "/quit":
			return nil
		default:
			payload, err := json.Marshal(proto.MessageData{Text: line})
			if err != nil {
				return fmt.Errorf("marshal message: %w", err)
			}
			send(proto.Inbound{Type: proto.InboundTypeMessage, Data: payload})
		}
	}
	return scanner.Err()
}

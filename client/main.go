// Interactive test client for the reveal server.
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeJoinRoom      = 101
	MsgTypeLeaveRoom     = 102
	MsgTypeCreateRoom    = 103
	MsgTypeSetSecret     = 104
	MsgTypeSetReady      = 105
	MsgTypeRequestReveal = 106
	MsgTypeRoomStats     = 107
	MsgTypeServerStats   = 108

	MsgTypeRoomUpdate         = 301
	MsgTypeStartCountdown     = 302
	MsgTypeReveal             = 303
	MsgTypePlayerDisconnected = 304
	MsgTypeConnected          = 305
	MsgTypeServerShutdown     = 306
)

var pushNames = map[uint16]string{
	MsgTypeRoomUpdate:         "roomUpdate",
	MsgTypeStartCountdown:     "startCountdown",
	MsgTypeReveal:             "reveal",
	MsgTypePlayerDisconnected: "playerDisconnected",
	MsgTypeConnected:          "connected",
	MsgTypeServerShutdown:     "serverShutdown",
}

// send frames and sends one message.
func send(c *websocket.Conn, msgID uint16, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	addr := "localhost:8080"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	var roomCode string

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]

			name := pushNames[msgID]
			if name == "" {
				name = "ack"
				// Remember the room code from create/join acks.
				var a struct {
					OK       bool   `json:"ok"`
					RoomCode string `json:"roomCode"`
				}
				if json.Unmarshal(data, &a) == nil && a.RoomCode != "" {
					roomCode = a.RoomCode
				}
			}
			log.Printf("<- %s (ID %d): %s", name, msgID, string(data))
		}
	}()

	log.Println("Commands: create [name] | join CODE [name] | secret TEXT | ready | unready | reveal | stats | serverstats | leave")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				name := strings.Join(fields[1:], " ")
				err = send(c, MsgTypeCreateRoom, map[string]string{"displayName": name})
			case "join":
				if len(fields) < 2 {
					log.Println("Usage: join CODE [name]")
					continue
				}
				roomCode = strings.ToUpper(fields[1])
				name := strings.Join(fields[2:], " ")
				err = send(c, MsgTypeJoinRoom, map[string]string{"roomCode": roomCode, "displayName": name})
			case "secret":
				err = send(c, MsgTypeSetSecret, map[string]string{
					"roomCode": roomCode,
					"secret":   strings.Join(fields[1:], " "),
				})
			case "ready":
				err = send(c, MsgTypeSetReady, map[string]interface{}{"roomCode": roomCode, "ready": true})
			case "unready":
				err = send(c, MsgTypeSetReady, map[string]interface{}{"roomCode": roomCode, "ready": false})
			case "reveal":
				err = send(c, MsgTypeRequestReveal, map[string]string{"roomCode": roomCode})
			case "stats":
				err = send(c, MsgTypeRoomStats, map[string]string{"roomCode": roomCode})
			case "serverstats":
				err = send(c, MsgTypeServerStats, map[string]string{})
			case "leave":
				err = send(c, MsgTypeLeaveRoom, map[string]string{"roomCode": roomCode})
				roomCode = ""
			default:
				log.Printf("Unknown command %q", fields[0])
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}

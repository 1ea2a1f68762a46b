package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/slvrxyzz/tvoizakaz/internal/app"
	"github.com/slvrxyzz/tvoizakaz/internal/bus"
	"github.com/slvrxyzz/tvoizakaz/internal/chat"
	"github.com/slvrxyzz/tvoizakaz/internal/config"
	"github.com/slvrxyzz/tvoizakaz/internal/lock"
	"github.com/slvrxyzz/tvoizakaz/internal/profile"
	"github.com/slvrxyzz/tvoizakaz/internal/rest"
	"github.com/slvrxyzz/tvoizakaz/internal/state"
	"github.com/slvrxyzz/tvoizakaz/internal/status"
	"github.com/slvrxyzz/tvoizakaz/internal/ws"
)

// client bundles everything a subcommand needs.
type client struct {
	store   *state.Store
	chat    *chat.Client
	manager *ws.Manager
	orders  *rest.Client
	machine *status.Machine
	bus     *bus.Bus
}

func main() {
	_ = godotenv.Load()

	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	timeoutFlag := flag.Duration("timeout", 10*time.Second, "time to wait for the backend")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.LoadOrDefault(profile.ConfigPath())

	var c client
	fxApp := fx.New(
		fx.NopLogger,
		app.Module(app.Params{Profile: profileName, Config: cfg, Quiet: true}),
		fx.Populate(&c.store, &c.chat, &c.manager, &c.orders, &c.machine, &c.bus),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	if err := fxApp.Start(startCtx); err != nil {
		cancel()
		var held *lock.HeldError
		if errors.As(err, &held) {
			fmt.Fprintf(os.Stderr, "error: profile %q is already in use (pid %d)\n", profileName, held.PID)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
	cancel()

	code := run(&c, args, *jsonFlag, *timeoutFlag)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 5*time.Second)
	_ = fxApp.Stop(stopCtx)
	cancelStop()
	os.Exit(code)
}

func run(c *client, args []string, jsonOut bool, timeout time.Duration) int {
	switch args[0] {
	case "status":
		return cmdStatus(c, jsonOut, timeout)
	case "chats":
		return cmdChats(c, jsonOut, timeout)
	case "messages":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: tvzctl messages <chat_id>")
			return 1
		}
		return cmdMessages(c, args[1], jsonOut, timeout)
	case "send":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: tvzctl send <chat_id> <text>")
			return 1
		}
		return cmdSend(c, args[1], strings.Join(args[2:], " "), timeout)
	case "send-user":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: tvzctl send-user <user_id> <text>")
			return 1
		}
		return cmdSendUser(c, args[1], strings.Join(args[2:], " "), timeout)
	case "order":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: tvzctl order <order_id>")
			return 1
		}
		return cmdOrder(c, args[1], jsonOut, timeout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: tvzctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                     Show connection status")
	fmt.Fprintln(os.Stderr, "  chats                      List chats")
	fmt.Fprintln(os.Stderr, "  messages <chat_id>         Show a chat's messages")
	fmt.Fprintln(os.Stderr, "  send <chat_id> <text>      Send a message to a chat")
	fmt.Fprintln(os.Stderr, "  send-user <user_id> <text> Start a direct conversation")
	fmt.Fprintln(os.Stderr, "  order <order_id>           Show an order")
}

// waitConnected blocks until the connection is up or the deadline
// passes.
func waitConnected(c *client, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		switch c.machine.Current() {
		case status.Connected:
			return true
		case status.Error:
			return false
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}

// waitEvent blocks until an event satisfying match arrives on ch.
func waitEvent(ch <-chan bus.Event, timeout time.Duration, match func(bus.Event) bool) bool {
	deadline := time.After(timeout)
	for {
		select {
		case evt := <-ch:
			if match(evt) {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

func cmdStatus(c *client, jsonOut bool, timeout time.Duration) int {
	waitConnected(c, timeout)
	st := c.machine.Current()

	if jsonOut {
		outputJSON(map[string]any{
			"status":  string(st),
			"user_id": c.store.SelfID(),
		})
	} else {
		fmt.Printf("Status:  %s\n", st)
		if id := c.store.SelfID(); id != 0 {
			fmt.Printf("User ID: %d\n", id)
		}
	}
	if st != status.Connected {
		return 1
	}
	return 0
}

func cmdChats(c *client, jsonOut bool, timeout time.Duration) int {
	ch, unsub := c.bus.Subscribe("chat.", 16)
	defer unsub()

	if !waitConnected(c, timeout) {
		fmt.Fprintf(os.Stderr, "error: not connected (status %s)\n", c.machine.Current())
		return 1
	}
	// The router requests the list on connect; wait for the snapshot.
	waitEvent(ch, timeout, func(evt bus.Event) bool {
		return evt.Kind == bus.KindChatListReplaced
	})

	chats := c.store.Chats()
	if jsonOut {
		outputJSON(chats)
		return 0
	}
	if len(chats) == 0 {
		fmt.Println("No chats.")
		return 0
	}
	selfID := c.store.SelfID()
	for _, chat := range chats {
		preview := ""
		if chat.LastMessage != nil {
			preview = chat.LastMessage.Text
		}
		fmt.Printf("%6d  %-24s %s\n", chat.ID, chat.PartnerOf(selfID), preview)
	}
	return 0
}

func cmdMessages(c *client, rawID string, jsonOut bool, timeout time.Duration) int {
	chatID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || chatID <= 0 {
		fmt.Fprintf(os.Stderr, "error: invalid chat id %q\n", rawID)
		return 1
	}

	ch, unsub := c.bus.Subscribe("message.", 16)
	defer unsub()

	if !waitConnected(c, timeout) {
		fmt.Fprintf(os.Stderr, "error: not connected (status %s)\n", c.machine.Current())
		return 1
	}
	c.chat.GetChatMessages(chatID)
	if !waitEvent(ch, timeout, func(evt bus.Event) bool {
		id, ok := evt.Payload.(int64)
		return evt.Kind == bus.KindMessageHistory && ok && id == chatID
	}) {
		fmt.Fprintln(os.Stderr, "error: no history received")
		return 1
	}

	msgs, _ := c.store.Messages(chatID)
	if jsonOut {
		outputJSON(msgs)
		return 0
	}
	for i := range msgs {
		m := &msgs[i]
		text := m.Text
		if m.IsOffer() {
			text = fmt.Sprintf("[offer %.0f %s, order #%d] %s", m.OfferPrice, m.OfferCurrency, m.OrderID, m.Text)
		}
		fmt.Printf("%s %s: %s\n", m.CreatedAt, m.Sender(), text)
	}
	return 0
}

func cmdSend(c *client, rawID, text string, timeout time.Duration) int {
	chatID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || chatID <= 0 {
		fmt.Fprintf(os.Stderr, "error: invalid chat id %q\n", rawID)
		return 1
	}
	if !waitConnected(c, timeout) {
		fmt.Fprintf(os.Stderr, "error: not connected (status %s)\n", c.machine.Current())
		return 1
	}
	if !c.chat.SendChatMessage(chatID, text) {
		fmt.Fprintln(os.Stderr, "error: message not transmitted")
		return 1
	}
	fmt.Println("Sent.")
	return 0
}

func cmdSendUser(c *client, rawID, text string, timeout time.Duration) int {
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || userID <= 0 {
		fmt.Fprintf(os.Stderr, "error: invalid user id %q\n", rawID)
		return 1
	}
	if !waitConnected(c, timeout) {
		fmt.Fprintf(os.Stderr, "error: not connected (status %s)\n", c.machine.Current())
		return 1
	}
	if !c.chat.SendUserMessage(userID, text) {
		fmt.Fprintln(os.Stderr, "error: message not transmitted")
		return 1
	}
	fmt.Println("Sent.")
	return 0
}

func cmdOrder(c *client, rawID string, jsonOut bool, timeout time.Duration) int {
	orderID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || orderID <= 0 {
		fmt.Fprintf(os.Stderr, "error: invalid order id %q\n", rawID)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	order, err := c.orders.GetOrder(ctx, orderID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if jsonOut {
		outputJSON(order)
		return 0
	}
	fmt.Printf("Order:    #%d %s\n", order.ID, order.Title)
	fmt.Printf("Price:    %.0f %s\n", order.Price, order.Currency)
	fmt.Printf("Status:   %s\n", order.Status)
	if order.CustomerName != "" {
		fmt.Printf("Customer: %s\n", order.CustomerName)
	}
	if order.Description != "" {
		fmt.Printf("\n%s\n", order.Description)
	}
	return 0
}

func outputJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

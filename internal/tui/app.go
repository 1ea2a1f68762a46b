package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/slvrxyzz/tvoizakaz/internal/chat"
	"github.com/slvrxyzz/tvoizakaz/internal/rest"
	"github.com/slvrxyzz/tvoizakaz/internal/state"
	"github.com/slvrxyzz/tvoizakaz/internal/status"
	"github.com/slvrxyzz/tvoizakaz/internal/tui/keys"
	"github.com/slvrxyzz/tvoizakaz/internal/tui/model"
	"github.com/slvrxyzz/tvoizakaz/internal/tui/views"
	"github.com/slvrxyzz/tvoizakaz/internal/ws"
)

// App is the main TUI application shell. It only ever reads the store;
// all writes flow through the event router on the transport side.
type App struct {
	app      *tview.Application
	pages    *tview.Pages
	store    *state.Store
	chat     *chat.Client
	manager  *ws.Manager
	orders   *rest.Client
	machine  *status.Machine
	registry *keys.Registry
	flash    *model.Flash

	statusBar  *views.StatusBar
	chatList   *views.ChatList
	msgView    *views.MessageView
	composer   *views.Composer
	notifView  *views.NotificationView
	orderPanel *views.OrderPanel
	startView  *views.StartMessageView
	prompt     *tview.InputField

	root       *tview.Flex
	activeChat int64
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(store *state.Store, chatClient *chat.Client, manager *ws.Manager, orders *rest.Client, machine *status.Machine, profileName string) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		store:      store,
		chat:       chatClient,
		manager:    manager,
		orders:     orders,
		machine:    machine,
		registry:   keys.NewRegistry(),
		flash:      &model.Flash{},
		statusBar:  views.NewStatusBar(),
		chatList:   views.NewChatList(),
		msgView:    views.NewMessageView(),
		composer:   views.NewComposer(),
		notifView:  views.NewNotificationView(),
		orderPanel: views.NewOrderPanel(),
		startView:  views.NewStartMessageView(),
		ctx:        ctx,
		cancel:     cancel,
	}

	a.statusBar.SetProfile(profileName)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddGlobal("reconnect", &keys.Action{
		Rune: 'R', Key: tcell.KeyRune,
		Description: "R:reconnect", Visible: true,
		Handler: func() { a.reconnect() },
	})
	a.registry.AddGlobal("notifications", &keys.Action{
		Rune: 'n', Key: tcell.KeyRune,
		Description: "n:notifications", Visible: true,
		Handler: func() { a.showNotifications() },
	})
	a.registry.AddPage("chats", "direct", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "d:direct msg", Visible: true,
		Handler: func() { a.showStartMessage() },
	})
	a.registry.AddPage("chat", "order", &keys.Action{
		Rune: 'o', Key: tcell.KeyRune,
		Description: "o:offer order", Visible: true,
		Handler: func() { a.showOfferOrder() },
	})
}

func (a *App) setupCallbacks() {
	a.chatList.SetSelectedFunc(func(row, col int) {
		if chatID := a.chatList.SelectedChat(); chatID != 0 {
			a.openChat(chatID)
		}
	})

	a.composer.SetOnSend(func(text string) bool {
		if a.activeChat == 0 {
			return false
		}
		if !a.chat.SendChatMessage(a.activeChat, text) {
			a.flash.Set("Not connected, message not sent", 5*time.Second)
			a.statusBar.SetFlash(a.flash.Get())
			return false
		}
		return true
	})

	a.startView.SetOnSend(func(userID int64, text string) bool {
		if !a.chat.SendUserMessage(userID, text) {
			a.flash.Set("Not connected, message not sent", 5*time.Second)
			a.statusBar.SetFlash(a.flash.Get())
			return false
		}
		a.flash.Set("Message sent", 3*time.Second)
		a.chat.GetChats()
		a.backToChats()
		return true
	})
}

func (a *App) setupLayout() {
	chatFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.msgView, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	a.pages.AddPage("chats", a.chatList, true, true)
	a.pages.AddPage("chat", chatFlex, true, false)
	a.pages.AddPage("notifications", a.notifView, true, false)
	a.pages.AddPage("order", a.orderPanel, true, false)
	a.pages.AddPage("start", a.startView, true, false)

	a.prompt = tview.NewInputField().SetLabel(" : ").SetFieldWidth(0)
	a.prompt.SetDoneFunc(func(key tcell.Key) {
		text := a.prompt.GetText()
		a.prompt.SetText("")
		a.hidePrompt()
		if key == tcell.KeyEnter && text != "" {
			a.runCommand(ParseCommand(text))
		}
	})

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			switch currentPage {
			case "chat":
				if a.activeChat != 0 {
					a.chat.LeaveChat(a.activeChat)
					a.activeChat = 0
				}
				a.backToChats()
				return nil
			case "notifications", "order", "start":
				a.backToChats()
				return nil
			}
		}

		// Let text input widgets handle all keys normally.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}
		if currentPage == "start" {
			return event
		}

		if event.Key() == tcell.KeyRune && event.Rune() == ':' {
			a.showPrompt()
			return nil
		}

		// 'i' focuses the composer (only when not already in an input field).
		if currentPage == "chat" && event.Key() == tcell.KeyRune && event.Rune() == 'i' {
			a.app.SetFocus(a.composer.InputField)
			return nil
		}

		if a.registry.HandleEvent(currentPage, event) {
			return nil
		}

		return event
	})
}

func (a *App) showPrompt() {
	a.root.AddItem(a.prompt, 1, 0, false)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.root.RemoveItem(a.prompt)
	a.app.SetFocus(a.pages)
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "open":
		if chatID, err := strconv.ParseInt(cmd.Args, 10, 64); err == nil && chatID > 0 {
			a.openChat(chatID)
		}
	case "msg":
		parts := strings.SplitN(cmd.Args, " ", 2)
		if len(parts) != 2 {
			return
		}
		userID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || userID <= 0 {
			return
		}
		if a.chat.SendUserMessage(userID, parts[1]) {
			a.flash.Set("Message sent", 3*time.Second)
			a.chat.GetChats()
		} else {
			a.flash.Set("Not connected, message not sent", 5*time.Second)
		}
		a.statusBar.SetFlash(a.flash.Get())
	case "reconnect":
		a.reconnect()
	case "quit", "q":
		a.app.Stop()
	}
}

func (a *App) openChat(chatID int64) {
	a.activeChat = chatID
	a.chat.JoinChat(chatID)
	a.chat.GetChatMessages(chatID)

	title := "chat #" + strconv.FormatInt(chatID, 10)
	if c, ok := a.store.Chat(chatID); ok {
		if name := c.PartnerOf(a.store.SelfID()); name != "" {
			title = name
		}
	}
	a.msgView.SetChatTitle(title)

	msgs, loaded := a.store.Messages(chatID)
	a.msgView.Update(msgs, a.store.SelfID(), loaded)
	a.pages.SwitchToPage("chat")
	a.app.SetFocus(a.composer.InputField)
}

func (a *App) backToChats() {
	a.pages.SwitchToPage("chats")
	a.app.SetFocus(a.chatList)
}

func (a *App) reconnect() {
	a.flash.Set("Reconnecting...", 3*time.Second)
	a.statusBar.SetFlash(a.flash.Get())
	go a.manager.Reconnect()
}

// showNotifications opens the queue and acknowledges it: the unread
// badge drops to zero the moment the view is shown.
func (a *App) showNotifications() {
	a.notifView.Update(a.store.Notifications())
	a.store.ClearNotifications()
	a.pages.SwitchToPage("notifications")
	a.app.SetFocus(a.notifView)
}

func (a *App) showStartMessage() {
	a.startView.Reset()
	a.pages.SwitchToPage("start")
	a.app.SetFocus(a.startView)
}

// showOfferOrder fetches the order behind the newest offer message in
// the active chat and renders it alongside.
func (a *App) showOfferOrder() {
	msgs, _ := a.store.Messages(a.activeChat)
	var orderID int64
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsOffer() {
			orderID = msgs[i].OrderID
			break
		}
	}
	if orderID == 0 {
		a.flash.Set("No offer in this chat", 3*time.Second)
		a.statusBar.SetFlash(a.flash.Get())
		return
	}

	a.orderPanel.ShowLoading(orderID)
	a.pages.SwitchToPage("order")
	a.app.SetFocus(a.orderPanel)

	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, 15*time.Second)
		defer cancel()
		order, err := a.orders.GetOrder(ctx, orderID)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.orderPanel.ShowError(err)
				return
			}
			a.orderPanel.Show(order)
		})
	}()
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	a.refresh()
	go a.watch()
	return a.app.Run()
}

// watch redraws on store changes, coalesced through the store's
// refresh channel, and ticks once a second for the clock and flash
// expiry.
func (a *App) watch() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.store.Refresh():
		case <-ticker.C:
		case <-a.ctx.Done():
			return
		}
		a.app.QueueUpdateDraw(a.refresh)
	}
}

func (a *App) refresh() {
	currentPage, _ := a.pages.GetFrontPage()
	a.statusBar.SetConnStatus(a.machine.Current())
	a.statusBar.SetUnread(a.store.UnreadCount())
	a.statusBar.SetHints(a.registry.Hints(currentPage))
	a.statusBar.SetFlash(a.flash.Get())

	switch currentPage {
	case "chats":
		a.chatList.Update(a.store.Chats(), a.store.SelfID())
	case "chat":
		if a.activeChat != 0 {
			msgs, loaded := a.store.Messages(a.activeChat)
			a.msgView.Update(msgs, a.store.SelfID(), loaded)
		}
	case "notifications":
		a.notifView.Update(a.store.Notifications())
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/slvrxyzz/tvoizakaz/internal/app"
	"github.com/slvrxyzz/tvoizakaz/internal/chat"
	"github.com/slvrxyzz/tvoizakaz/internal/config"
	"github.com/slvrxyzz/tvoizakaz/internal/lock"
	"github.com/slvrxyzz/tvoizakaz/internal/profile"
	"github.com/slvrxyzz/tvoizakaz/internal/rest"
	"github.com/slvrxyzz/tvoizakaz/internal/state"
	"github.com/slvrxyzz/tvoizakaz/internal/status"
	"github.com/slvrxyzz/tvoizakaz/internal/tui"
	"github.com/slvrxyzz/tvoizakaz/internal/ws"
)

func main() {
	_ = godotenv.Load()

	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := config.LoadOrDefault(profile.ConfigPath())

	var (
		store      *state.Store
		chatClient *chat.Client
		manager    *ws.Manager
		orders     *rest.Client
		machine    *status.Machine
	)

	fxApp := fx.New(
		fx.NopLogger,
		app.Module(app.Params{Profile: profileName, Config: cfg, Quiet: true}),
		fx.Populate(&store, &chatClient, &manager, &orders, &machine),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		var held *lock.HeldError
		if errors.As(err, &held) {
			fmt.Fprintf(os.Stderr, "error: profile %q is already in use (pid %d)\n", profileName, held.PID)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}

	ui := tui.NewApp(store, chatClient, manager, orders, machine, profileName)
	runErr := ui.Run()
	ui.Stop()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	_ = fxApp.Stop(stopCtx)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

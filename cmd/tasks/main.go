package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Hussein-Mazeh/TaskTracker/auth"
	"github.com/Hussein-Mazeh/TaskTracker/internal/colors"
	dbpkg "github.com/Hussein-Mazeh/TaskTracker/internal/db"
	"github.com/Hussein-Mazeh/TaskTracker/ledger"
	"github.com/Hussein-Mazeh/TaskTracker/store"
)

const cliVersion = "0.1.0"

const blockedTimeLayout = "2006-01-02 15:04:05"

type userError struct {
	msg string
}

func (e userError) Error() string { return e.msg }

func main() {
	args := os.Args[1:]
	cmd := "run"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "version":
		fmt.Println(cliVersion)
	case "run":
		if err := runApp(args); err != nil {
			handleError(err)
		}
	case "gate":
		if len(args) < 1 || args[0] != "set" {
			printGateUsage()
			os.Exit(1)
		}
		if err := runGateSet(args[1:]); err != nil {
			handleError(err)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleError(err error) {
	if err == nil {
		return
	}

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(os.Stderr, uerr.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "unexpected error: %v\n", err)
	os.Exit(2)
}

// app bundles the open stores and services behind the interactive menus.
type app struct {
	svc         *auth.Service
	db          *dbpkg.DB
	in          *bufio.Reader
	log         *slog.Logger
	breachCheck bool
}

func runApp(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var dir string
	var migrateLegacy bool
	var breachCheck bool
	fs.StringVar(&dir, "dir", "./data", "data directory")
	fs.BoolVar(&migrateLegacy, "migrate-legacy", false, "re-hash legacy credentials on successful login")
	fs.BoolVar(&breachCheck, "breach-check", false, "check new passwords against the HIBP breach corpus")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	paths := store.Paths{Dir: dir}
	users := store.NewUserFile(paths)
	attempts := ledger.New(store.NewAttemptFile(paths))
	svc := auth.NewService(users, attempts,
		auth.WithLegacyMigration(migrateLegacy),
		auth.WithLogger(log),
	)

	database, err := dbpkg.Open(paths.TasksDBPath())
	if err != nil {
		return fmt.Errorf("open task database: %w", err)
	}
	defer dbpkg.Close(database)

	if err := dbpkg.Migrate(database); err != nil {
		return fmt.Errorf("initialise task database: %w", err)
	}

	a := &app{
		svc:         svc,
		db:          database,
		in:          bufio.NewReader(os.Stdin),
		log:         log,
		breachCheck: breachCheck,
	}
	return a.mainMenu()
}

func runGateSet(args []string) error {
	fs := flag.NewFlagSet("gate set", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var dir string
	fs.StringVar(&dir, "dir", "./data", "data directory")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	pw, err := promptPassword("Admin creation password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if pw != confirm {
		return userError{msg: "passwords do not match"}
	}

	paths := store.Paths{Dir: dir}
	users := store.NewUserFile(paths)
	attempts := ledger.New(store.NewAttemptFile(paths))
	svc := auth.NewService(users, attempts)

	if err := svc.SetAdminGate(pw); err != nil {
		return fmt.Errorf("store admin gate: %w", err)
	}

	fmt.Println("admin creation password set")
	return nil
}

func (a *app) mainMenu() error {
	for {
		clearScreen()
		fmt.Println(colors.Border("========================================"))
		fmt.Println(colors.Title("        Welcome to TaskTracker!"))
		fmt.Println(colors.Border("========================================"))
		fmt.Println("Please choose an option:")
		fmt.Println(colors.Green + "  1. " + colors.White + "Login" + colors.Reset)
		fmt.Println(colors.Blue + "  2. " + colors.White + "Register" + colors.Reset)
		fmt.Println(colors.Magenta + "  3. " + colors.White + "Create admin" + colors.Reset)
		fmt.Println(colors.Red + "  0. " + colors.White + "Exit" + colors.Reset)
		fmt.Println(colors.Border("========================================"))

		choice, err := a.readLine(colors.Prompt("Enter your choice: "))
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			if err := a.loginFlow(); err != nil {
				return err
			}
		case "2":
			if err := a.registerFlow(false); err != nil {
				return err
			}
		case "3":
			if err := a.createAdminFlow(); err != nil {
				return err
			}
		case "0":
			clearScreen()
			fmt.Println(colors.Success("\nThank you for using TaskTracker. Goodbye!"))
			return nil
		default:
			fmt.Println(colors.Error("\nPlease choose 0, 1, 2, or 3."))
			a.pause()
		}
	}
}

func (a *app) loginFlow() error {
	clearScreen()
	fmt.Println(colors.Title("--- Login ---"))

	username, err := a.readLine(colors.Prompt("Username: "))
	if err != nil {
		return err
	}

	result, err := a.svc.Login(username, &cliPrompter{app: a})
	if err != nil {
		if errors.Is(err, auth.ErrStoreUnavailable) {
			a.log.Error("login aborted, store unavailable", "err", err)
			fmt.Println(colors.Error("\nThe account store is unavailable. Try again later."))
			a.pause()
			return nil
		}
		return err
	}

	switch result.Kind {
	case auth.ResultUnknownUser:
		fmt.Println(colors.Error("\nUsername does not exist."))
		a.pause()
	case auth.ResultBlocked:
		fmt.Println(colors.Error(fmt.Sprintf("\nToo many failed attempts. Try again at %s",
			result.UnblockTime.Format(blockedTimeLayout))))
		a.pause()
	case auth.ResultFailure:
		fmt.Println(colors.Error("\nLogin failed."))
		a.pause()
	case auth.ResultSuccess:
		fmt.Println(colors.Success(fmt.Sprintf("\nWelcome, %s!", result.Username)))
		a.pause()
		if result.IsAdmin {
			return a.adminMenu(result.Username)
		}
		return a.userMenu(result.Username)
	}
	return nil
}

func (a *app) registerFlow(admin bool) error {
	clearScreen()
	title := "--- Register ---"
	if admin {
		title = "--- Register (Admin) ---"
	}
	fmt.Println(colors.Title(title))

	var username string
	for {
		var err error
		username, err = a.readLine(colors.Prompt("Choose a username: "))
		if err != nil {
			return err
		}
		if username == "" {
			fmt.Println(colors.Error("Username cannot be empty."))
			continue
		}
		break
	}

	password, err := promptPassword(colors.Prompt("Choose a password: "))
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword(colors.Prompt("Confirm password: "))
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if password != confirm {
		fmt.Println(colors.Error("\nPasswords do not match."))
		a.pause()
		return nil
	}

	if err := auth.ValidateNewPassword(username, password); err != nil {
		fmt.Println(colors.Error("\n" + err.Error()))
		a.pause()
		return nil
	}

	if a.breachCheck {
		a.warnIfBreached(password)
	}

	if err := a.svc.Register(username, password, admin); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			fmt.Println(colors.Error(fmt.Sprintf("\nUsername %q already exists. Please choose another name.", username)))
		case errors.Is(err, auth.ErrStoreUnavailable):
			a.log.Error("registration failed, store unavailable", "err", err)
			fmt.Println(colors.Error("\nThe account store is unavailable. Try again later."))
		default:
			return err
		}
		a.pause()
		return nil
	}

	suffix := ""
	if admin {
		suffix = " (Admin)"
	}
	fmt.Println(colors.Success(fmt.Sprintf("\nUser %q registered successfully!%s", username, suffix)))
	a.pause()
	return nil
}

// warnIfBreached consults the HIBP range API and warns on a hit. Lookup
// failures are logged and otherwise ignored: a network problem should not
// block registration.
func (a *app) warnIfBreached(password string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := auth.BreachCount(ctx, password)
	if err != nil {
		a.log.Warn("breach check skipped", "err", err)
		return
	}
	if count > 0 {
		fmt.Println(colors.Warning(fmt.Sprintf(
			"Warning: this password appears in %d known breaches. Consider a different one.", count)))
	}
}

func (a *app) createAdminFlow() error {
	clearScreen()
	fmt.Println(colors.Title("--- Create Admin ---"))

	gatePw, err := promptPassword(colors.Warning("Enter admin creation password: "))
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	ok, err := a.svc.VerifyAdminGate(gatePw)
	if err != nil {
		a.log.Error("admin gate check failed", "err", err)
		fmt.Println(colors.Error("\nThe account store is unavailable. Try again later."))
		a.pause()
		return nil
	}
	if !ok {
		fmt.Println(colors.Error("\nIncorrect admin password. Access denied."))
		a.pause()
		return nil
	}

	return a.registerFlow(true)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: tasks <command>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  version")
	fmt.Fprintln(os.Stderr, "  run [--dir <data-dir>] [--migrate-legacy] [--breach-check]")
	fmt.Fprintln(os.Stderr, "  gate set [--dir <data-dir>]")
}

func printGateUsage() {
	fmt.Fprintln(os.Stderr, "Usage: tasks gate set [--dir <data-dir>]")
}

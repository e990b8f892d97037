package proxy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/logger"
	"github.com/porchlightgames/titandawn/internal/text"
)

// AuthResult is a successfully authenticated connection, ready to bind
// as a session.
type AuthResult struct {
	Username string
	ObjectID int64
}

// authenticate runs the login/registration menu for a fresh connection.
func (p *Proxy) authenticate(client *TelnetClient) (*AuthResult, error) {
	client.WriteLine("")
	if t := text.GetInstance(); t != nil && t.GetWelcomeBanner() != "" {
		for _, line := range strings.Split(t.GetWelcomeBanner(), "\n") {
			client.WriteLine(line)
		}
	} else {
		// Fallback if text not loaded
		client.WriteLine(fmt.Sprintf("Welcome to %s!", p.cfg.Game.Name))
	}
	client.WriteLine("")
	client.WriteLine("  [L] Login")
	client.WriteLine("  [C] Create a new account")
	client.WriteLine("")
	client.WriteString("Enter choice: ")

	choice, err := client.ReadLine()
	if err != nil {
		return nil, errors.New("connection closed")
	}

	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "l", "login":
		return p.handleLogin(client)
	case "c", "create":
		return p.handleCreate(client)
	default:
		client.WriteLine("Invalid choice. Disconnecting.")
		return nil, errors.New("invalid choice")
	}
}

func (p *Proxy) handleLogin(client *TelnetClient) (*AuthResult, error) {
	client.WriteLine("")
	client.WriteString("Username: ")
	username, err := client.ReadLine()
	if err != nil {
		return nil, errors.New("connection closed")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		client.WriteLine("Username cannot be empty.")
		return nil, errors.New("empty username")
	}

	client.WriteString("Password: ")
	password, err := client.ReadLine()
	if err != nil {
		return nil, errors.New("connection closed")
	}

	account, err := p.db.ValidateLogin(username, password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			logger.Info("Failed login attempt", "username", username, "remote", client.RemoteAddr())
			client.WriteLine(invalidLoginMessage())
			return nil, errors.New("invalid credentials")
		}
		client.WriteLine("An error occurred. Please try again.")
		return nil, err
	}

	objectID, err := p.ensurePlayerObject(account)
	if err != nil {
		client.WriteLine(worldUnavailableMessage())
		return nil, err
	}

	return &AuthResult{Username: account.Username, ObjectID: objectID}, nil
}

func (p *Proxy) handleCreate(client *TelnetClient) (*AuthResult, error) {
	client.WriteLine("")
	client.WriteLine("--- Create Account ---")
	client.WriteString("Username: ")
	username, err := client.ReadLine()
	if err != nil {
		return nil, errors.New("connection closed")
	}
	username = strings.TrimSpace(username)

	client.WriteString("Password: ")
	password, err := client.ReadLine()
	if err != nil {
		return nil, errors.New("connection closed")
	}

	client.WriteString("Password (again): ")
	confirm, err := client.ReadLine()
	if err != nil {
		return nil, errors.New("connection closed")
	}
	if password != confirm {
		client.WriteLine("Passwords do not match.")
		return nil, errors.New("password mismatch")
	}

	client.WriteString("Email (optional): ")
	email, err := client.ReadLine()
	if err != nil {
		return nil, errors.New("connection closed")
	}
	email = strings.TrimSpace(email)

	account, err := p.db.CreateAccount(username, password, email)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrAccountExists):
			client.WriteLine(accountTakenMessage())
		default:
			client.WriteLine(fmt.Sprintf("Could not create account: %s", err))
		}
		return nil, err
	}

	logger.Info("Account created", "username", account.Username, "remote", client.RemoteAddr())

	objectID, err := p.ensurePlayerObject(account)
	if err != nil {
		// The account exists; the player object will be provisioned on
		// the next successful login.
		client.WriteLine("Your account was created, but the game world is unavailable right now.")
		client.WriteLine("Please log in again shortly.")
		return nil, err
	}

	client.WriteLine("")
	client.WriteLine(fmt.Sprintf("Welcome, %s!", account.Username))
	return &AuthResult{Username: account.Username, ObjectID: objectID}, nil
}

// ensurePlayerObject returns the account's controlling object id,
// asking the world to provision one if the account has none yet.
func (p *Proxy) ensurePlayerObject(account *database.Account) (int64, error) {
	if account.ControllingObjectID != 0 {
		return account.ControllingObjectID, nil
	}

	objectID, err := p.world.CreatePlayerObject(context.Background(), account.Username)
	if err != nil {
		return 0, err
	}

	if err := p.db.SetControllingObject(account.Username, objectID); err != nil {
		logger.Error("Binding player object to account failed",
			"username", account.Username,
			"object_id", objectID,
			"error", err)
		return 0, err
	}

	return objectID, nil
}

func worldUnavailableMessage() string {
	if t := text.GetInstance(); t != nil {
		return t.GetWorldUnavailable()
	}
	return "The game world is unavailable right now. Please try again shortly."
}

func accountTakenMessage() string {
	if t := text.GetInstance(); t != nil {
		return t.GetAccountTaken()
	}
	return "That username is already taken."
}

func invalidLoginMessage() string {
	if t := text.GetInstance(); t != nil {
		return t.GetInvalidLogin()
	}
	return "Invalid username or password."
}

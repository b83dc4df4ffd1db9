// Package console implements the interactive text menu: sign up, log in, and
// manage assets for the logged-in user.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"invest/internal/repositories"
	"invest/internal/services"
	"invest/internal/store"
)

// Console reads menu choices line by line and writes status messages.
type Console struct {
	in     *bufio.Scanner
	out    io.Writer
	auth   *services.AuthService
	assets *services.AssetService
	bank   *services.BankService
	logger *zap.Logger
}

// New creates a Console reading from in and writing to out.
func New(in io.Reader, out io.Writer, auth *services.AuthService, assets *services.AssetService, bank *services.BankService, logger *zap.Logger) *Console {
	return &Console{
		in:     bufio.NewScanner(in),
		out:    out,
		auth:   auth,
		assets: assets,
		bank:   bank,
		logger: logger,
	}
}

var errInputClosed = errors.New("input closed")

// Run shows the main menu until the user exits or input ends.
func (c *Console) Run() error {
	for {
		c.println("=== Invest System ===")
		c.println("1. Sign Up")
		c.println("2. Login")
		c.println("0. Exit")
		choice, err := c.promptChoice()
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = c.signUp()
		case 2:
			err = c.login()
		case 0:
			c.println("Bye!")
			return nil
		default:
			c.println("Invalid choice.")
		}
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) signUp() error {
	username, err := c.prompt("Enter username: ")
	if err != nil {
		return err
	}
	password, err := c.prompt("Enter password: ")
	if err != nil {
		return err
	}

	if _, err := c.auth.Register(username, password); err != nil {
		c.println("Username already exists or error occurred.")
		return nil
	}
	c.println("User registered successfully.")
	return nil
}

func (c *Console) login() error {
	username, err := c.prompt("Enter username: ")
	if err != nil {
		return err
	}
	password, err := c.prompt("Enter password: ")
	if err != nil {
		return err
	}

	userID, err := c.auth.Authenticate(username, password)
	if err != nil {
		c.println("Login failed. Try again.")
		return nil
	}
	c.println(fmt.Sprintf("Login successful. Welcome, %s!", username))
	return c.assetMenu(userID)
}

func (c *Console) assetMenu(userID int) error {
	for {
		c.println(" === Asset Menu ===")
		c.println("1. View Assets")
		c.println("2. Add Asset")
		c.println("3. Edit Asset")
		c.println("4. Delete Asset")
		c.println("5. Compliance Check")
		c.println("6. Link Bank Account")
		c.println("0. Back")
		choice, err := c.promptChoice()
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			c.viewAssets(userID)
		case 2:
			err = c.addAsset(userID)
		case 3:
			err = c.editAsset(userID)
		case 4:
			err = c.deleteAsset()
		case 5:
			c.complianceReport(userID)
		case 6:
			err = c.linkBank(userID)
		case 0:
			return nil
		default:
			c.println("Invalid choice.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) viewAssets(userID int) {
	assets := c.assets.ListAssets(userID)
	if len(assets) == 0 {
		c.println("No assets.")
		return
	}
	for _, a := range assets {
		c.println(a.String())
	}
}

func (c *Console) addAsset(userID int) error {
	assetType, err := c.prompt("Enter asset type: ")
	if err != nil {
		return err
	}
	value, ok, err := c.promptFloat("Enter asset value: ")
	if err != nil || !ok {
		return err
	}

	_, err = c.assets.AddAsset(userID, assetType, value)
	if errors.Is(err, repositories.ErrInvalidValue) {
		c.println("Invalid number.")
		return nil
	}
	c.reportMutation("Asset added.", err)
	return nil
}

func (c *Console) editAsset(userID int) error {
	id, ok, err := c.promptInt("Enter asset ID to edit: ")
	if err != nil || !ok {
		return err
	}
	assetType, err := c.prompt("New type: ")
	if err != nil {
		return err
	}
	value, ok, err := c.promptFloat("New value: ")
	if err != nil || !ok {
		return err
	}

	err = c.assets.EditAsset(id, userID, assetType, value)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.println("Asset not found.")
		return nil
	case errors.Is(err, repositories.ErrInvalidValue):
		c.println("Invalid number.")
		return nil
	}
	c.reportMutation("Asset updated.", err)
	return nil
}

func (c *Console) deleteAsset() error {
	id, ok, err := c.promptInt("Enter asset ID to delete: ")
	if err != nil || !ok {
		return err
	}
	c.reportMutation("Asset deleted.", c.assets.DeleteAsset(id))
	return nil
}

func (c *Console) complianceReport(userID int) {
	report := c.assets.CheckCompliance(userID)
	c.println(" === Compliance Report ===")
	for _, line := range report.Findings {
		c.println(line)
	}
}

func (c *Console) linkBank(userID int) error {
	card, err := c.prompt("Enter card number: ")
	if err != nil {
		return err
	}
	cvv, err := c.prompt("Enter CVV: ")
	if err != nil {
		return err
	}
	otp, err := c.prompt(fmt.Sprintf("Enter OTP (%s): ", c.bank.DemoOTP()))
	if err != nil {
		return err
	}

	if err := c.bank.LinkAccount(userID, card, cvv, otp); err != nil {
		c.println("Bank linking failed: Invalid OTP.")
		return nil
	}
	c.println("Bank account linked successfully.")
	return nil
}

// reportMutation prints success, or a warning when the change was applied
// but could not be saved.
func (c *Console) reportMutation(success string, err error) {
	if err != nil {
		c.logger.Warn("change applied but not saved", zap.Error(err))
		c.println(success + " Warning: changes may be lost on restart.")
		return
	}
	c.println(success)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// promptChoice returns -1 for input that is not a number.
func (c *Console) promptChoice() (int, error) {
	line, err := c.prompt("Choose: ")
	if err != nil {
		return 0, err
	}
	choice, convErr := strconv.Atoi(line)
	if convErr != nil {
		return -1, nil
	}
	return choice, nil
}

func (c *Console) promptInt(label string) (int, bool, error) {
	line, err := c.prompt(label)
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(line)
	if convErr != nil {
		c.println("Invalid number.")
		return 0, false, nil
	}
	return n, true, nil
}

func (c *Console) promptFloat(label string) (float64, bool, error) {
	line, err := c.prompt(label)
	if err != nil {
		return 0, false, err
	}
	f, convErr := strconv.ParseFloat(line, 64)
	// ParseFloat accepts "NaN" and "Inf".
	if convErr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		c.println("Invalid number.")
		return 0, false, nil
	}
	return f, true, nil
}

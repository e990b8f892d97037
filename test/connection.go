package test

import (
	"fmt"
	"time"

	"github.com/porchlightgames/titandawn/internal/testclient"
)

// TestBasicConnection tests that a client can register and land in the
// starting room.
func TestBasicConnection(serverAddr string) TestResult {
	const testName = "Basic Connection"

	name := uniqueName("conntest")
	logAction(testName, fmt.Sprintf("Registering as '%s'...", name))
	client, err := testclient.NewTestClient(name, serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect: %v", err)}
	}
	defer client.Close()

	logAction(testName, "Waiting for the starting room description...")
	if !client.WaitForMessage("And so it begins...", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Never saw the starting room"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Registered and entered the game"}
}

// TestInvalidMenuChoice tests that garbage at the connect menu is
// rejected.
func TestInvalidMenuChoice(serverAddr string) TestResult {
	const testName = "Invalid Menu Choice"

	client, err := testclient.NewTestClientRaw(serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect: %v", err)}
	}
	defer client.Close()

	if !client.WaitForMessage("Enter choice:", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Never saw the connect menu"}
	}

	client.SendCommand("xyzzy")
	if !client.WaitForMessage("Invalid choice", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "No rejection for invalid choice"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Invalid choice rejected"}
}

// TestDuplicateAccount tests that a username cannot be registered
// twice, case-insensitively.
func TestDuplicateAccount(serverAddr string) TestResult {
	const testName = "Duplicate Account"

	name := uniqueName("duptest")
	first, err := testclient.NewTestClient(name, serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("First registration failed: %v", err)}
	}
	defer first.Close()

	second, err := testclient.NewTestClientRaw(serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect: %v", err)}
	}
	defer second.Close()

	if !second.WaitForMessage("Enter choice:", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Never saw the connect menu"}
	}

	password := "duppass123"
	for _, line := range []string{"c", name, password, password, ""} {
		second.SendCommand(line)
		time.Sleep(100 * time.Millisecond)
	}

	if !second.WaitForMessage("already taken", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Duplicate username was not refused"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Duplicate username refused"}
}

// TestLoginExistingAccount tests registering, quitting, and logging
// back into the same account and player object.
func TestLoginExistingAccount(serverAddr string) TestResult {
	const testName = "Login Existing Account"

	name := uniqueName("logintest")
	first, err := testclient.NewTestClient(name, serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Registration failed: %v", err)}
	}

	first.SendCommand("quit")
	first.WaitForMessage("Disconnecting", 2*time.Second)
	first.Close()

	creds := testclient.Credentials{Username: name, Password: name + "pass123"}
	second, err := testclient.NewTestClientWithLogin(creds, serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Login failed: %v", err)}
	}
	defer second.Close()

	if !second.WaitForMessage("And so it begins...", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Never re-entered the starting room"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Logged back into existing account"}
}

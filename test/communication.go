package test

import (
	"fmt"
	"time"

	"github.com/porchlightgames/titandawn/internal/testclient"
)

// TestSayCommand tests that speech reaches both speaker and listener.
func TestSayCommand(serverAddr string) TestResult {
	const testName = "Say Command"

	speaker, listener, result := connectedPair(testName, serverAddr, "sayer", "hearer")
	if result != nil {
		return *result
	}
	defer speaker.Close()
	defer listener.Close()

	logAction(testName, "Speaking...")
	speaker.SendCommand("say Testing testing")

	if !speaker.WaitForMessage(`You say, "Testing testing"`, 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Speaker never saw own speech"}
	}
	if !listener.WaitForMessage(fmt.Sprintf(`%s says, "Testing testing"`, speaker.Name), 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Listener never heard the speech"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Speech delivered to both parties"}
}

// TestPoseCommand tests that poses reach other players in the room.
func TestPoseCommand(serverAddr string) TestResult {
	const testName = "Pose Command"

	poser, watcher, result := connectedPair(testName, serverAddr, "poser", "watcher")
	if result != nil {
		return *result
	}
	defer poser.Close()
	defer watcher.Close()

	poser.SendCommand("pose waves enthusiastically.")

	if !watcher.WaitForMessage(poser.Name+" waves enthusiastically.", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Watcher never saw the pose"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Pose delivered"}
}

// TestWhoCommand tests that connected accounts appear in who output.
func TestWhoCommand(serverAddr string) TestResult {
	const testName = "Who Command"

	name := uniqueName("whotest")
	client, err := testclient.NewTestClient(name, serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect: %v", err)}
	}
	defer client.Close()

	client.ClearMessages()
	client.SendCommand("who")

	if !client.WaitForMessage(name, 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Own account missing from who output"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Who listed the connected account"}
}

// TestUnknownCommand tests the response to gibberish input.
func TestUnknownCommand(serverAddr string) TestResult {
	const testName = "Unknown Command"

	name := uniqueName("huhtest")
	client, err := testclient.NewTestClient(name, serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect: %v", err)}
	}
	defer client.Close()

	client.SendCommand("frobnicate the gizmo")

	if !client.WaitForMessage("Huh?", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "No Huh? for unknown command"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Unknown command answered with Huh?"}
}

// TestQuitCommand tests voluntary disconnect.
func TestQuitCommand(serverAddr string) TestResult {
	const testName = "Quit Command"

	name := uniqueName("quittest")
	client, err := testclient.NewTestClient(name, serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect: %v", err)}
	}
	defer client.Close()

	client.SendCommand("quit")

	if !client.WaitForMessage("Disconnecting. See you soon.", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "No goodbye message on quit"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Quit disconnected cleanly"}
}

// connectedPair registers two fresh accounts that land in the same
// starting room.
func connectedPair(testName, serverAddr, baseA, baseB string) (*testclient.TestClient, *testclient.TestClient, *TestResult) {
	first, err := testclient.NewTestClient(uniqueName(baseA), serverAddr)
	if err != nil {
		return nil, nil, &TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("First client failed: %v", err)}
	}

	second, err := testclient.NewTestClient(uniqueName(baseB), serverAddr)
	if err != nil {
		first.Close()
		return nil, nil, &TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Second client failed: %v", err)}
	}

	// Both land in the starting room; wait for presence to settle.
	first.WaitForMessage(second.Name+" has connected.", 2*time.Second)

	return first, second, nil
}

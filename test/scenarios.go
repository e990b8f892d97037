// Package test holds smoke-test scenarios run by cmd/testrunner against
// a live proxy+world stack. These complement the unit tests: they
// exercise the full telnet → link → command pipeline end to end.
package test

import (
	"fmt"
	"sync/atomic"
)

// uniqueCounter provides unique IDs for test players within a single run
var uniqueCounter uint64

// uniqueName generates a unique name by appending a letter-based suffix
// so repeated runs against the same proxy database don't collide.
func uniqueName(base string) string {
	counter := atomic.AddUint64(&uniqueCounter, 1)
	return base + counterToLetters(counter)
}

// counterToLetters converts a number to a letter sequence (1=a, 2=b,
// ..., 26=z, 27=aa, 28=ab, ...)
func counterToLetters(n uint64) string {
	if n == 0 {
		return "a"
	}
	result := ""
	for n > 0 {
		n-- // Make it 0-indexed
		result = string(rune('a'+(n%26))) + result
		n /= 26
	}
	return result
}

// Verbose controls whether detailed logging is shown during tests
var Verbose = false

// TestResult represents the result of a test
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

// logAction logs a test action when verbose mode is enabled
func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

// RunAllTests runs every scenario against the given proxy address.
func RunAllTests(serverAddr string) []TestResult {
	results := make([]TestResult, 0)

	// Group 1: Connection & Account System
	results = append(results, TestBasicConnection(serverAddr))
	results = append(results, TestInvalidMenuChoice(serverAddr))
	results = append(results, TestDuplicateAccount(serverAddr))
	results = append(results, TestLoginExistingAccount(serverAddr))

	// Group 2: Communication & Presence
	results = append(results, TestSayCommand(serverAddr))
	results = append(results, TestPoseCommand(serverAddr))
	results = append(results, TestWhoCommand(serverAddr))
	results = append(results, TestUnknownCommand(serverAddr))
	results = append(results, TestQuitCommand(serverAddr))

	return results
}

// PrintResults prints a summary of all test results.
func PrintResults(results []TestResult) {
	passed := 0
	failed := 0

	fmt.Println("============================================================")
	fmt.Println("Smoke Test Results")
	fmt.Println("============================================================")
	fmt.Println()

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Println()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Println("------------------------------------------------------------")
}

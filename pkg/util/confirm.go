package util

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ConfirmDanger warns that operation will erase flash the device cannot
// restore on its own and asks the operator to type "yes" in full. A y/n
// shortcut is deliberately not accepted: an erased application sector
// leaves the board in update mode until a new image is uploaded and
// committed, so the prompt demands the long form.
func ConfirmDanger(operation string) bool {
	fmt.Printf("\n⚠️  WARNING: %s\n", operation)
	fmt.Println("The affected flash sectors cannot be restored once erased.")
	fmt.Print("\nType 'yes' to continue: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(line)) == "yes"
}

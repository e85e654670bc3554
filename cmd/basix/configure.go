package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Tweenwrld/basix-marketplace/internal/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive setup for Basix credentials",
	Long: `Store the OpenAI API key used for optional rule-engine insights.
The key goes to the OS keychain when one is available; everything else
works without it.`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 Basix Configuration")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	km := config.NewKeyringManager()
	if !km.IsAvailable() {
		fmt.Println("⚠️  OS keychain not available (headless system or Linux without libsecret).")
		fmt.Println("   Set OPENAI_API_KEY in the environment instead.")
		return nil
	}

	existing, err := km.GetAPIKey()
	if err == nil && existing != "" {
		fmt.Printf("An OpenAI API key is already stored (%s).\n", maskKey(existing))
		fmt.Print("Replace it? (y/N): ")
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(response)) != "y" {
			fmt.Println("Keeping existing key.")
			return nil
		}
	}

	fmt.Print("OpenAI API key (leave empty to disable generated insights): ")
	key, err := readSecurely()
	if err != nil {
		return fmt.Errorf("read api key: %w", err)
	}

	if key == "" {
		if err := km.DeleteAPIKey(); err != nil {
			return err
		}
		fmt.Println("✓ Key cleared, running rules-only")
		return nil
	}

	if err := km.SaveAPIKey(key); err != nil {
		return err
	}
	fmt.Println("✓ Saved to keychain")
	return nil
}

// readSecurely reads a secret from stdin without echoing when stdin is a
// terminal; piped input falls back to a plain line read.
func readSecurely() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

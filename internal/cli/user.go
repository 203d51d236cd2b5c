package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"interview-voice-service/internal/storage"
)

var (
	userFirstName string
	userLastName  string
	userEmail     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage candidates",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a candidate and print its id",
	RunE:  runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVar(&userFirstName, "first-name", "", "Candidate first name (required)")
	userAddCmd.Flags().StringVar(&userLastName, "last-name", "", "Candidate last name (required)")
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Candidate email (required, unique)")
	_ = userAddCmd.MarkFlagRequired("first-name")
	_ = userAddCmd.MarkFlagRequired("last-name")
	_ = userAddCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userAddCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	res := storage.NewRepository(db).CreateUser(cmd.Context(), storage.NewUser{
		FirstName: strings.TrimSpace(userFirstName),
		LastName:  strings.TrimSpace(userLastName),
		Email:     strings.TrimSpace(userEmail),
	})
	if res.IsErr() {
		return fmt.Errorf("ошибка создания пользователя: %w", res.Err())
	}

	u := res.Value()
	fmt.Fprintf(cmd.OutOrStdout(), "user %d created: %s %s <%s>\n", u.ID, u.FirstName, u.LastName, u.Email)
	return nil
}

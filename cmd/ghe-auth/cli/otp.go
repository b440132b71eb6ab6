package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/spf13/cobra"
)

// EnvOTPSecret holds a base32 TOTP secret. When set and --otp is not given,
// the current code is generated from it.
const EnvOTPSecret = "GHE_AUTH_OTP_SECRET"

func addOTPFlag(cmd *cobra.Command, code *string) {
	cmd.Flags().StringVar(code, "otp", "", "two-factor code (default: generated from "+EnvOTPSecret+" when set)")
}

// resolveOTP returns the two-factor code to send, or "" for none.
func resolveOTP(flag string, now time.Time) (string, error) {
	if flag != "" {
		return flag, nil
	}
	secret := os.Getenv(EnvOTPSecret)
	if secret == "" {
		return "", nil
	}
	code, err := totp.GenerateCode(secret, now)
	if err != nil {
		return "", fmt.Errorf("failed to generate two-factor code from %s: %w", EnvOTPSecret, err)
	}
	return code, nil
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarkfin/platform-go/internal/domain"

	"github.com/urfave/cli/v3"
)

func (a *app) cmdAccount() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Profile, credits and plans of the signed-in user",
		Commands: []*cli.Command{
			{
				Name:  "profile",
				Usage: "Show the user profile",
				Action: func(ctx context.Context, c *cli.Command) error {
					p, err := a.api.GetUserProfile(ctx)
					if err != nil {
						return err
					}
					if a.json {
						return a.printJSON(p)
					}
					a.printf("%s <%s>\n", p.FullName, p.Email)
					if p.CompanyName != "" {
						a.printf("  company:    %s\n", p.CompanyName)
					}
					if p.CurrentPlan != nil {
						a.printf("  plan:       %s\n", p.CurrentPlan.PlanName)
					}
					a.printf("  onboarded:  %t\n", p.OnboardingCompleted)
					return nil
				},
			},
			{
				Name:  "credits",
				Usage: "Show remaining credits",
				Action: func(ctx context.Context, c *cli.Command) error {
					cr, err := a.api.GetUserCredits(ctx)
					if err != nil {
						return err
					}
					if a.json {
						return a.printJSON(cr)
					}
					a.printf("%s %d of %d (used %d)\n", ok.Sprint("available"), cr.AvailableCredits, cr.TotalCredits, cr.UsedCredits)
					return nil
				},
			},
			{
				Name:  "plans",
				Usage: "List subscription plans",
				Action: func(ctx context.Context, c *cli.Command) error {
					plans, err := a.api.GetSubscriptionPlans(ctx)
					if err != nil {
						return err
					}
					if a.json {
						return a.printJSON(plans)
					}
					tw := a.table()
					fmt.Fprintln(tw, "PLAN\tCREDITS/MO\tPRICE/MO\tPRICE/YR")
					for _, p := range plans {
						fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\n", p.PlanName, p.MonthlyCredits, p.MonthlyPrice, p.YearlyPrice)
					}
					return tw.Flush()
				},
			},
			{
				Name:      "send-otp",
				Usage:     "Send a verification code to a phone number",
				ArgsUsage: "<phone>",
				Action: func(ctx context.Context, c *cli.Command) error {
					phone, err := requireArg(c, "phone")
					if err != nil {
						return err
					}
					resp, err := a.api.SendPhoneVerification(ctx, strings.TrimSpace(phone))
					if err != nil {
						return err
					}
					if a.json {
						return a.printJSON(resp)
					}
					a.printf("%s expires %s\n", ok.Sprint(resp.Message), resp.ExpiresAt)
					return nil
				},
			},
			{
				Name:      "verify-otp",
				Usage:     "Confirm a phone verification code",
				ArgsUsage: "<phone> <code>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.NArg() != 2 {
						return &domain.ErrValidation{Field: "code", Message: "usage: verify-otp <phone> <code>"}
					}
					resp, err := a.api.VerifyPhoneCode(ctx, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					if a.json {
						return a.printJSON(resp)
					}
					a.printf("%s phone verified: %t\n", ok.Sprint(resp.Message), resp.PhoneVerified)
					return nil
				},
			},
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/quarkfin/platform-go/internal/domain"

	"github.com/urfave/cli/v3"
)

func (a *app) cmdAssess() *cli.Command {
	return &cli.Command{
		Name:    "assess",
		Aliases: []string{"a"},
		Usage:   "Website risk assessments",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Submit a website for assessment",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "website", Usage: "website to assess", Required: true},
					&cli.StringFlag{Name: "country", Usage: "ISO country code", Required: true},
					&cli.StringFlag{Name: "description", Usage: "free-text business description"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					req := domain.CreateAssessmentRequest{
						Website:     c.String("website"),
						CountryCode: c.String("country"),
						Description: c.String("description"),
					}
					if err := req.Validate(); err != nil {
						return err
					}
					as, err := a.api.CreateAssessment(ctx, req)
					if err != nil {
						return err
					}
					return a.printAssessment(as)
				},
			},
			{
				Name:      "get",
				Usage:     "Show one assessment",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := assessmentID(c)
					if err != nil {
						return err
					}
					as, err := a.api.GetAssessment(ctx, id)
					if err != nil {
						return err
					}
					return a.printAssessment(as)
				},
			},
			{
				Name:  "list",
				Usage: "List assessments",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "page size"},
					&cli.IntFlag{Name: "offset", Usage: "rows to skip"},
					&cli.StringFlag{Name: "status", Usage: "pending, processing, completed or failed"},
					&cli.StringFlag{Name: "country", Usage: "ISO country code"},
					&cli.StringFlag{Name: "risk", Usage: "low_risk, med_risk or high_risk"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					list, err := a.api.ListAssessments(ctx, domain.ListAssessmentsParams{
						Limit:        int(c.Int("limit")),
						Offset:       int(c.Int("offset")),
						Status:       domain.AssessmentStatus(c.String("status")),
						CountryCode:  c.String("country"),
						RiskCategory: domain.RiskCategory(c.String("risk")),
					})
					if err != nil {
						return err
					}
					if a.json {
						return a.printJSON(list)
					}
					tw := a.table()
					fmt.Fprintln(tw, "ID\tWEBSITE\tCOUNTRY\tSTATUS\tRISK")
					for _, as := range list {
						risk := "-"
						if as.RiskCategory != "" {
							risk = RiskLabel(as.RiskCategory)
						}
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", as.ID, as.Website, as.CountryCode, as.Status, risk)
					}
					return tw.Flush()
				},
			},
			{
				Name:      "poll",
				Usage:     "Follow an assessment until it completes or fails",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := assessmentID(c)
					if err != nil {
						return err
					}
					final, err := a.api.PollAssessmentStatus(ctx, id, func(as *domain.Assessment) {
						if !a.json {
							a.printf("%s #%d %s\n", faint.Sprint("poll"), as.ID, as.Status)
						}
					}, a.poll)
					if err != nil {
						return err
					}
					return a.printAssessment(final)
				},
			},
		},
	}
}

func assessmentID(c *cli.Command) (int64, error) {
	raw := c.Args().First()
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ErrValidation{Field: "id", Message: fmt.Sprintf("%q is not a valid assessment id", raw)}
	}
	return id, nil
}

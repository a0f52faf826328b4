package cli

import (
	"context"
	"fmt"

	"github.com/quarkfin/platform-go/internal/domain"

	"github.com/urfave/cli/v3"
)

func (a *app) cmdBusinessRisk() *cli.Command {
	return &cli.Command{
		Name:  "brp",
		Usage: "Business risk prevention assessments",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Start a business risk assessment",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "business name", Required: true},
					&cli.StringFlag{Name: "domain", Usage: "business domain", Required: true},
					&cli.StringFlag{Name: "industry", Usage: "industry"},
					&cli.StringFlag{Name: "geography", Usage: "operating geography"},
					&cli.StringFlag{Name: "type", Usage: "'Comprehensive' or 'Quick Scan'", Value: string(domain.AssessmentComprehensive)},
					&cli.StringFlag{Name: "description", Usage: "free-text description"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					req := domain.CreateBusinessRiskAssessmentRequest{
						BusinessName:   c.String("name"),
						Domain:         c.String("domain"),
						Industry:       c.String("industry"),
						Geography:      c.String("geography"),
						AssessmentType: domain.AssessmentType(c.String("type")),
						Description:    c.String("description"),
					}
					if err := req.Validate(); err != nil {
						return err
					}
					b, err := a.api.CreateBusinessRiskAssessment(ctx, req)
					if err != nil {
						return err
					}
					return a.printBusinessRisk(b)
				},
			},
			{
				Name:      "get",
				Usage:     "Show one assessment",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					b, err := a.api.GetBusinessRiskAssessment(ctx, id)
					if err != nil {
						return err
					}
					return a.printBusinessRisk(b)
				},
			},
			{
				Name:  "list",
				Usage: "List assessments",
				Action: func(ctx context.Context, c *cli.Command) error {
					list, err := a.api.ListBusinessRiskAssessments(ctx)
					if err != nil {
						return err
					}
					if a.json {
						return a.printJSON(list)
					}
					tw := a.table()
					fmt.Fprintln(tw, "ID\tBUSINESS\tDOMAIN\tTYPE\tSTATUS\tRISK\tSCORE")
					for _, b := range list {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.1f\n",
							b.ID, b.BusinessName, b.Domain, b.AssessmentType, b.Status, LevelLabel(b.RiskLevel), b.RiskScore)
					}
					return tw.Flush()
				},
			},
			{
				Name:      "rerun",
				Usage:     "Run an assessment again",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					b, err := a.api.RerunBusinessRiskAssessment(ctx, id)
					if err != nil {
						return err
					}
					return a.printBusinessRisk(b)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete one or more assessments",
				ArgsUsage: "<id> [id...]",
				Action: func(ctx context.Context, c *cli.Command) error {
					ids := c.Args().Slice()
					if len(ids) == 0 {
						return &domain.ErrValidation{Field: "id", Message: "at least one id is required"}
					}
					var (
						resp *domain.MessageResponse
						err  error
					)
					if len(ids) == 1 {
						resp, err = a.api.DeleteBusinessRiskAssessment(ctx, ids[0])
					} else {
						resp, err = a.api.BulkDeleteBusinessRiskAssessments(ctx, ids)
					}
					if err != nil {
						return err
					}
					if a.json {
						return a.printJSON(resp)
					}
					a.printf("%s %s\n", ok.Sprint("deleted"), resp.Message)
					return nil
				},
			},
			{
				Name:  "insights",
				Usage: "Show portfolio insights",
				Action: func(ctx context.Context, c *cli.Command) error {
					in, err := a.api.GetBusinessRiskInsights(ctx)
					if err != nil {
						return err
					}
					return a.printJSON(in)
				},
			},
			{
				Name:  "export-csv",
				Usage: "Download all assessments as CSV",
				Flags: []cli.Flag{outFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					dl, err := a.api.ExportBusinessRiskCSV(ctx)
					if err != nil {
						return err
					}
					return a.saveDownload(dl, c.String("out"))
				},
			},
			{
				Name:      "export-pdf",
				Usage:     "Download one assessment report as PDF",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{outFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					dl, err := a.api.ExportBusinessRiskPDF(ctx, id)
					if err != nil {
						return err
					}
					return a.saveDownload(dl, c.String("out"))
				},
			},
			{
				Name:      "poll",
				Usage:     "Follow an assessment until it completes or fails",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					final, err := a.api.PollBusinessRiskAssessment(ctx, id, func(b *domain.BusinessRiskAssessment) {
						if !a.json {
							a.printf("%s %s %s\n", faint.Sprint("poll"), b.ID, b.Status)
						}
					}, a.poll)
					if err != nil {
						return err
					}
					return a.printBusinessRisk(final)
				},
			},
		},
	}
}

func outFlag() cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (defaults to the server's file name)"}
}

func requireArg(c *cli.Command, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", &domain.ErrValidation{Field: name, Message: "is required"}
	}
	return v, nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
)

// Campaign submits a campaign described as a JSON object.
func (a *App) Campaign(ctx context.Context) error {
	txID, err := getSimpleText(a.reader, "Payment transaction ID", a.out)
	if err != nil {
		return err
	}
	body, err := getMultiline(a.reader, "Campaign JSON", a.out)
	if err != nil {
		return err
	}

	campaign := map[string]any{}
	if body != "" {
		if err := json.Unmarshal([]byte(body), &campaign); err != nil {
			return fmt.Errorf("campaign must be a JSON object: %w", err)
		}
	}

	resp, err := a.campaignService.Submit(ctx, txID, campaign)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Campaign accepted: job %s (%s)", resp.JobID, resp.Status))
	return nil
}

func (a *App) Campaigns(ctx context.Context) error {
	list, err := a.campaignService.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No campaigns")
		return nil
	}
	for _, c := range list {
		printlnFn(fmt.Sprintf("%s\t%s\t%s", c.JobID, c.Status, c.CreatedAt))
	}
	return nil
}

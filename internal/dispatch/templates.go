package dispatch

import (
	"fmt"
	"strings"

	"mission-workers/internal/models"
)

var emailTemplates = map[models.EmailTemplate]models.NotificationTemplate{
	models.EmailRevisionRequested: {
		ID:      string(models.EmailRevisionRequested),
		Type:    "email",
		Subject: "Revision requested for {{campaignTitle}}",
		Body: "The campaign owner asked for revision #{{revisionNumber}} of your mission content.\n\n" +
			"Reason: {{reason}}\n{{feedback}}\n\nPlease resubmit your updated content link.",
		Version: "1",
	},
	models.EmailMissionApproved: {
		ID:      string(models.EmailMissionApproved),
		Type:    "email",
		Subject: "Your mission for {{campaignTitle}} was approved",
		Body:    "Your content {{contentUrl}} was approved and added to your portfolio.\n\n{{feedback}}",
		Version: "1",
	},
}

func lookupTemplate(name string) (models.NotificationTemplate, error) {
	tmpl, ok := emailTemplates[models.EmailTemplate(name)]
	if !ok {
		return models.NotificationTemplate{}, fmt.Errorf("unknown email template %q", name)
	}
	return tmpl, nil
}

// render substitutes {{name}} placeholders; placeholders without a value are removed.
func render(tmpl string, vars map[string]string) string {
	result := tmpl
	for k, v := range vars {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return strings.TrimSpace(result)
}

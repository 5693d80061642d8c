package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	accessUseCase "github.com/allisson/gatekeeper/internal/access/usecase"
	"github.com/allisson/gatekeeper/internal/app"
	"github.com/allisson/gatekeeper/internal/config"
)

// RunSetRule adds or replaces an access rule. Actions are comma-separated and
// conditions are an optional JSON object of field-equality checks.
func RunSetRule(ctx context.Context, clientID, pattern, actions, conditionsJSON, format string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	ruleEngine, err := container.RuleEngine()
	if err != nil {
		return fmt.Errorf("failed to initialize rule engine: %w", err)
	}

	return setRule(ctx, ruleEngine, logger, clientID, pattern, actions, conditionsJSON, format, ioTuple)
}

func setRule(
	ctx context.Context,
	ruleEngine accessUseCase.RuleEngine,
	logger *slog.Logger,
	clientID string,
	pattern string,
	actions string,
	conditionsJSON string,
	format string,
	ioTuple IOTuple,
) error {
	actionList := parseActions(actions)

	var conditions map[string]any
	if conditionsJSON != "" {
		if err := json.Unmarshal([]byte(conditionsJSON), &conditions); err != nil {
			return fmt.Errorf("failed to parse conditions JSON: %w", err)
		}
	}

	rule := &accessDomain.Rule{
		ClientID:        clientID,
		ResourcePattern: pattern,
		Actions:         actionList,
		Conditions:      conditions,
	}

	if err := ruleEngine.Upsert(ctx, rule); err != nil {
		return fmt.Errorf("failed to set rule: %w", err)
	}

	if format == "json" {
		outputJSON(rule, ioTuple.Writer)
	} else {
		_, _ = fmt.Fprintf(
			ioTuple.Writer,
			"Rule set for client %s on %s (actions: %s)\n",
			clientID,
			pattern,
			strings.Join(actionList, ", "),
		)
	}

	logger.Info("access rule set",
		slog.String("client_id", clientID),
		slog.String("resource_pattern", pattern),
	)
	return nil
}

// RunDeleteRule removes the access rule keyed by client id and resource
// pattern.
func RunDeleteRule(ctx context.Context, clientID, pattern string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	ruleEngine, err := container.RuleEngine()
	if err != nil {
		return fmt.Errorf("failed to initialize rule engine: %w", err)
	}

	if err := ruleEngine.Delete(ctx, clientID, pattern); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	_, _ = fmt.Fprintf(ioTuple.Writer, "Rule deleted for client %s on %s\n", clientID, pattern)

	logger.Info("access rule deleted",
		slog.String("client_id", clientID),
		slog.String("resource_pattern", pattern),
	)
	return nil
}

// RunListRules prints access rules, either for one client or paginated across
// all clients.
func RunListRules(ctx context.Context, clientID string, offset, limit int, format string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	ruleEngine, err := container.RuleEngine()
	if err != nil {
		return fmt.Errorf("failed to initialize rule engine: %w", err)
	}

	return listRules(ctx, ruleEngine, logger, clientID, offset, limit, format, ioTuple)
}

func listRules(
	ctx context.Context,
	ruleEngine accessUseCase.RuleEngine,
	logger *slog.Logger,
	clientID string,
	offset int,
	limit int,
	format string,
	ioTuple IOTuple,
) error {
	var rules []*accessDomain.Rule
	var err error

	if clientID != "" {
		rules, err = ruleEngine.ListByClient(ctx, clientID)
	} else {
		rules, err = ruleEngine.List(ctx, offset, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list rules: %w", err)
	}

	if format == "json" {
		outputJSON(rules, ioTuple.Writer)
	} else {
		if len(rules) == 0 {
			_, _ = fmt.Fprintln(ioTuple.Writer, "No rules found")
		}
		for _, rule := range rules {
			line := fmt.Sprintf(
				"%s\t%s\t%s",
				rule.ClientID,
				rule.ResourcePattern,
				strings.Join(rule.Actions, ","),
			)
			if len(rule.Conditions) > 0 {
				conditionsBytes, _ := json.Marshal(rule.Conditions)
				line += "\t" + string(conditionsBytes)
			}
			_, _ = fmt.Fprintln(ioTuple.Writer, line)
		}
	}

	logger.Info("access rules listed", slog.Int("count", len(rules)))
	return nil
}

// parseActions converts a comma-separated string into an action slice,
// dropping blanks.
func parseActions(input string) []string {
	parts := strings.Split(input, ",")
	actions := make([]string, 0, len(parts))
	for _, part := range parts {
		action := strings.TrimSpace(part)
		if action != "" {
			actions = append(actions, action)
		}
	}
	return actions
}

package settings

import (
	"context"
	"fmt"
)

// reconcileSecurity toggles Dependabot alerts and security updates.
// Neither is part of the repository resource, so their status is read only when
// the section asks for them. Security updates depend on alerts: alerts are
// enabled first when needed, and disabling updates leaves alerts alone.
func (rn *run) reconcileSecurity(ctx context.Context) error {
	sa := rn.doc.SecurityAnalysis
	if sa == nil {
		return nil
	}
	wantAlerts := sa.VulnerabilitiesAlertsEnabled
	wantFixes := sa.AutomaticSecurityUpdatesEnabled
	if wantAlerts == nil && wantFixes == nil {
		return nil
	}

	var fixes bool
	if wantFixes != nil {
		enabled, err := rn.client.AutomatedSecurityFixesEnabled(ctx, rn.owner, rn.repo)
		if err != nil {
			return fmt.Errorf("failed to read automated security fixes status: %w", err)
		}
		fixes = enabled
	}
	enableFixes := wantFixes != nil && *wantFixes && !fixes

	var alerts bool
	if wantAlerts != nil || enableFixes {
		enabled, err := rn.client.VulnerabilityAlertsEnabled(ctx, rn.owner, rn.repo)
		if err != nil {
			return fmt.Errorf("failed to read vulnerability alerts status: %w", err)
		}
		alerts = enabled
	}

	if (enableFixes || (wantAlerts != nil && *wantAlerts)) && !alerts {
		if err := rn.setAlerts(ctx, true); err != nil {
			return err
		}
		alerts = true
	}

	if wantFixes != nil && *wantFixes != fixes {
		if err := rn.setFixes(ctx, fixes, *wantFixes); err != nil {
			return err
		}
	}

	// Updates, if they were on, are already off at this point
	if wantAlerts != nil && !*wantAlerts && alerts {
		if err := rn.setAlerts(ctx, false); err != nil {
			return err
		}
	}

	return nil
}

func (rn *run) setAlerts(ctx context.Context, enable bool) error {
	rn.record(Change{
		Section: "securityAnalysis",
		Field:   "vulnerabilitiesAlertsEnabled",
		Type:    changeType(enable),
		From:    !enable,
		To:      enable,
	})

	name, fn := CallDisableVulnerabilityAlerts, rn.client.DisableVulnerabilityAlerts
	if enable {
		name, fn = CallEnableVulnerabilityAlerts, rn.client.EnableVulnerabilityAlerts
	}
	if err := rn.call(name, func() error { return fn(ctx, rn.owner, rn.repo) }); err != nil {
		return fmt.Errorf("failed to %s vulnerability alerts: %w", changeType(enable), err)
	}
	return nil
}

func (rn *run) setFixes(ctx context.Context, from, to bool) error {
	rn.record(Change{
		Section: "securityAnalysis",
		Field:   "automaticSecurityUpdatesEnabled",
		Type:    changeType(to),
		From:    from,
		To:      to,
	})

	name, fn := CallDisableAutomatedSecurityFixes, rn.client.DisableAutomatedSecurityFixes
	if to {
		name, fn = CallEnableAutomatedSecurityFixes, rn.client.EnableAutomatedSecurityFixes
	}
	if err := rn.call(name, func() error { return fn(ctx, rn.owner, rn.repo) }); err != nil {
		return fmt.Errorf("failed to %s automated security fixes: %w", changeType(to), err)
	}
	return nil
}

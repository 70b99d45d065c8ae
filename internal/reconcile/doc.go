// Package reconcile converges firewalld's permanent configuration towards a
// desired zone or service.
//
// Each reconciler probes the live state through a firewalld.Client, issues
// only the mutating commands needed to reach the desired state and reports
// whether anything changed. With dry-run enabled the probes still run but no
// mutating command is issued; the Outcome lists what would have been run.
//
//	client := firewalld.NewClient(nil)
//	out, err := reconcile.NewServiceReconciler(client).Reconcile(ctx, config.ServiceSpec{
//		Name:     "test",
//		State:    config.StatePresent,
//		Port:     "8400",
//		Protocol: "tcp",
//	})
//
// Reconcilers hold no state between calls and never cache firewalld's
// answers. Callers must serialize invocations against the same host.
package reconcile

// Package issued is the local cache of words already known to have a
// tracking issue. It exists purely to avoid redundant remote searches; losing
// it is safe, the next reconcile pass rebuilds it from tracker state.
package issued

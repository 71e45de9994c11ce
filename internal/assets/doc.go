// Package assets deploys files from the launcher's read-only asset bundle into
// the per-install external directory.
//
// Deployment is best-effort: Deployer.Deploy never returns an error. A missing
// bundle entry or a failed write is logged and the call degrades to a no-op.
//
// Without overwrite, an existing destination is left alone, so repeated
// calls copy at most once. With overwrite, every call copies.
//
// Copies go through a temp file in the destination directory and an atomic
// rename, and a "<dest>.lock" file serializes concurrent deploys of the same
// file (for example the start-up deploy and a signal-driven re-deploy).
package assets

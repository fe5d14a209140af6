// Package s3 provides artifact storage for rendered templates.
//
// The Client wraps bucket and object operations. The Publisher layers the
// content-addressed key scheme on top: each template is uploaded under a key
// derived from its document hash, so re-deploying an unchanged environment
// rewrites identical bytes and a changed template never clobbers the
// artifact a running stack was created from.
package s3

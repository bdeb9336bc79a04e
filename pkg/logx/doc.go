// Package logx provides the structured logging service used across the
// bot. It wraps zerolog behind a small Logger type so components don't
// depend on a concrete logging library, and fans out to console, file
// and (optionally) a rate-limited Telegram chat.
package logx

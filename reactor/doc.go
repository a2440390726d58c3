// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness reactor owned by an event loop thread:
// epoll plus an eventfd waker on Linux. Ready callbacks of one poll batch run in
// ascending registration priority.
package reactor

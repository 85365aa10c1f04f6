package manager

import "time"

// watch polls on a fixed interval and evicts the resident engine once the
// configured idle window has elapsed. It exits when Close signals shutdown;
// Close joins it, so no eviction can race past teardown.
func (m *Manager) watch() {
	defer close(m.watcherDone)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.shutdown:
			m.logger.Debug("idle watcher shutting down")
			return
		case <-ticker.C:
		}

		// Re-check after the sleep so a shutdown raced against a tick wins.
		select {
		case <-m.shutdown:
			m.logger.Debug("idle watcher shutting down")
			return
		default:
		}

		policy := m.settings.Settings().Unload
		window, timed := policy.Timeout()
		if !timed {
			// never keeps the engine resident; immediately is handled
			// synchronously in Finalize, not by polling.
			continue
		}

		idle := time.Duration(time.Now().UnixMilli()-m.lastActivity.Load()) * time.Millisecond
		if idle <= window || !m.IsLoaded() {
			continue
		}

		m.logger.Debug("unloading model due to inactivity", "idle_ms", idle.Milliseconds())
		if err := m.Unload(); err != nil {
			// Eviction failures are never fatal; the next poll retries.
			m.logger.Error("idle eviction failed", "error", err)
		}
	}
}

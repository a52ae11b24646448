package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DialogueTier != TierStateful {
		t.Errorf("DialogueTier = %q, want %q", cfg.DialogueTier, TierStateful)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.Period1Start != 1 || cfg.Period1End != 15 {
		t.Errorf("period 1 = %d-%d, want 1-15", cfg.Period1Start, cfg.Period1End)
	}
	if cfg.Period2Start != 20 || cfg.Period2End != 31 {
		t.Errorf("period 2 = %d-%d, want 20-31", cfg.Period2Start, cfg.Period2End)
	}
	if cfg.Period1Advance != 1 || cfg.Period2Advance != 2 {
		t.Errorf("advance = %d/%d, want 1/2", cfg.Period1Advance, cfg.Period2Advance)
	}
	if cfg.DefaultSaturdayCount != 3 {
		t.Errorf("DefaultSaturdayCount = %d, want 3", cfg.DefaultSaturdayCount)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DIALOGUE_TIER", "AI")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("WINDOW_PERIOD2_END", "28")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DialogueTier != TierAI {
		t.Errorf("DialogueTier = %q, want %q (lowercased)", cfg.DialogueTier, TierAI)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want 1h", cfg.SessionTTL)
	}
	if cfg.Period2End != 28 {
		t.Errorf("Period2End = %d, want 28", cfg.Period2End)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("WINDOW_PERIOD1_START", "not-a-number")
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("REDIS_TLS", "maybe")

	cfg := Load()

	if cfg.Period1Start != 1 {
		t.Errorf("Period1Start = %d, want default 1", cfg.Period1Start)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want default 30m", cfg.SessionTTL)
	}
	if cfg.RedisTLS {
		t.Error("RedisTLS should fall back to false")
	}
}

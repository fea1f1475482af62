package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (APPENDLOG_*). It respects flags that have been explicitly set (changed
// map). Returns an error if any environment variable has an invalid
// format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("path", os.Getenv("APPENDLOG_PATH"), &cfg.Path)

	if err := s.setIntFromString("term-length", os.Getenv("APPENDLOG_TERM_LENGTH_BYTES"), &cfg.TermLengthBytes); err != nil {
		return err
	}
	if err := s.setIntFromString("buffer-size-mb", os.Getenv("APPENDLOG_BUFFER_SIZE_MB"), &cfg.BufferSizeMB); err != nil {
		return err
	}
	if err := s.setIntFromString("spin-limit", os.Getenv("APPENDLOG_SPIN_LIMIT"), &cfg.SpinLimit); err != nil {
		return err
	}
	if err := s.setIntFromString("fragment-limit", os.Getenv("APPENDLOG_FRAGMENT_LIMIT"), &cfg.FragmentLimit); err != nil {
		return err
	}
	if err := s.setIntFromString("stream-id", os.Getenv("APPENDLOG_STREAM_ID"), &cfg.StreamID); err != nil {
		return err
	}
	if err := s.setDuration("idle-min-sleep", os.Getenv("APPENDLOG_IDLE_MIN_SLEEP"), &cfg.IdleMinSleep); err != nil {
		return err
	}
	if err := s.setDuration("idle-max-sleep", os.Getenv("APPENDLOG_IDLE_MAX_SLEEP"), &cfg.IdleMaxSleep); err != nil {
		return err
	}

	s.setBoolFromString("wait", os.Getenv("APPENDLOG_WAIT"), &cfg.Wait)

	return nil
}

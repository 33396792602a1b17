package deliberation

import "time"

// Settings holds the convergence constants of a deliberation. Zero fields
// take the defaults from DefaultSettings.
type Settings struct {
	// DiscussionRounds is the maximum number of discussion rounds.
	DiscussionRounds int `yaml:"discussionRounds" env:"DISCUSSION_ROUNDS"`

	// EarlyExitAgreements is the number of agreeing participants that ends
	// discussion early, provided nobody disagrees in the same round.
	EarlyExitAgreements int `yaml:"earlyExitAgreements" env:"EARLY_EXIT_AGREEMENTS"`

	// ConsensusRounds is the maximum number of voting rounds.
	ConsensusRounds int `yaml:"consensusRounds" env:"CONSENSUS_ROUNDS"`

	// ConsensusThreshold is the agreement ratio at which a vote passes.
	ConsensusThreshold float64 `yaml:"consensusThreshold" env:"CONSENSUS_THRESHOLD"`

	// ParticipantTimeout bounds each individual participant call.
	ParticipantTimeout time.Duration `yaml:"participantTimeout" env:"PARTICIPANT_TIMEOUT"`
}

// DefaultSettings returns the standard deliberation constants.
func DefaultSettings() Settings {
	return Settings{
		DiscussionRounds:    3,
		EarlyExitAgreements: 3,
		ConsensusRounds:     3,
		ConsensusThreshold:  0.8,
		ParticipantTimeout:  2 * time.Minute,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.DiscussionRounds <= 0 {
		s.DiscussionRounds = d.DiscussionRounds
	}
	if s.EarlyExitAgreements <= 0 {
		s.EarlyExitAgreements = d.EarlyExitAgreements
	}
	if s.ConsensusRounds <= 0 {
		s.ConsensusRounds = d.ConsensusRounds
	}
	if s.ConsensusThreshold <= 0 || s.ConsensusThreshold > 1 {
		s.ConsensusThreshold = d.ConsensusThreshold
	}
	if s.ParticipantTimeout <= 0 {
		s.ParticipantTimeout = d.ParticipantTimeout
	}
	return s
}

// Caps on the lists carried between stages.
const (
	maxRoundItems          = 5
	maxKeyThemes           = 5
	maxInsights            = 3
	maxCorePrinciples      = 3
	maxKeyInnovations      = 2
	maxBalancedApproaches  = 2
	maxResolvedConflicts   = 3
	maxRemainingTensions   = 2
	maxFoldedModifications = 3
	maxFoldedCritical      = 2
	maxFoldedSupport       = 3
	maxSupportingFactors   = 3
	maxKeyModifications    = 5
	maxAreasOfAgreement    = 5
	maxDissentingViews     = 3
	maxUnresolvedIssues    = 3
)

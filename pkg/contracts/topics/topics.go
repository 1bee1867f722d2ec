package topics

const (
	// Games
	GameResultRecorded = "game_result_recorded"

	// Bets
	BetSettled = "bet_settled"

	// DLQs
	GameResultRecordedDLQ = "game_result_recorded_dlq"
)

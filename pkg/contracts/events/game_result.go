package events

import "time"

// Evento publicado no tópico "game_result_recorded" quando um admin
// registra o resultado final de um jogo. O settlement-worker consome
// este evento para (re)executar a liquidação das apostas pendentes.
type GameResultRecorded struct {
	GameID     string    `json:"game_id"`
	Outcome    string    `json:"outcome"` // "homeWin" | "awayWin" | "draw"
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	RecordedAt time.Time `json:"recorded_at"`
}

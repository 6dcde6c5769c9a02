package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"tablelab/internal/models"
)

const resultsRange = "Results!A1"

// Service appends experiment records to a Google Sheet, one row per
// participant, for teams that watch incoming data live during a study.
type Service struct {
	service       *sheets.Service
	spreadsheetID string
}

func New(credentialsFile, spreadsheetID string) (*Service, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &Service{service: srv, spreadsheetID: spreadsheetID}, nil
}

// TestConnection проверяет подключение к таблице
func (s *Service) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, resultsRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// AppendResultRow appends one flattened record below the existing rows.
func (s *Service) AppendResultRow(ctx context.Context, result models.ExperimentResult) error {
	row := []interface{}{
		result.Timestamp,
		string(result.FirstSystem),
		string(result.Trial1.System),
		result.Trial1.Prompt,
		result.Trial1.Duration,
		string(result.Trial2.System),
		result.Trial2.Prompt,
		result.Trial2.Duration,
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, resultsRange, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append result row: %w", err)
	}
	return nil
}

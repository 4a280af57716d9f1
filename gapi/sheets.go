package gapi

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/sheets/v4"
)

// sheetHeader is written to row 1 of a freshly created sheet.
var sheetHeader = []interface{}{"Uploaded Date", "Link"}

// AppendRow makes sure the configured sheet exists with a frozen header row,
// then appends one row with the upload time and video URL. The remote calls
// are sequential and not transactional; a failure partway leaves whatever
// already succeeded in place.
func (c *Client) AppendRow(ctx context.Context, uploadedAt time.Time, videoURL string) error {
	svc, err := sheets.NewService(ctx, c.options()...)
	if err != nil {
		return fmt.Errorf("%w: sheets service: %v", ErrSheetAppend, err)
	}

	spreadsheet, err := svc.Spreadsheets.Get(c.sheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: get spreadsheet: %v", ErrSheetAppend, err)
	}

	var tabID int64 = -1
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.sheetTitle {
			tabID = sheet.Properties.SheetId
			break
		}
	}

	if tabID < 0 {
		resp, err := svc.Spreadsheets.BatchUpdate(c.sheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: c.sheetTitle},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%w: add sheet %q: %v", ErrSheetAppend, c.sheetTitle, err)
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
			tabID = resp.Replies[0].AddSheet.Properties.SheetId
		}
	}

	header, err := svc.Spreadsheets.Values.Get(c.sheetID, c.sheetTitle+"!1:1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: read header row: %v", ErrSheetAppend, err)
	}

	if len(header.Values) == 0 || len(header.Values[0]) == 0 {
		_, err := svc.Spreadsheets.Values.Update(c.sheetID, c.sheetTitle+"!A1", &sheets.ValueRange{
			Values: [][]interface{}{sheetHeader},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%w: write header row: %v", ErrSheetAppend, err)
		}

		if tabID >= 0 {
			_, err = svc.Spreadsheets.BatchUpdate(c.sheetID, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: []*sheets.Request{{
					UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
						Fields: "gridProperties.frozenRowCount",
						Properties: &sheets.SheetProperties{
							SheetId:        tabID,
							GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
						},
					},
				}},
			}).Context(ctx).Do()
			if err != nil {
				return fmt.Errorf("%w: freeze header row: %v", ErrSheetAppend, err)
			}
		}
	}

	_, err = svc.Spreadsheets.Values.Append(c.sheetID, c.sheetTitle+"!A:Z", &sheets.ValueRange{
		Values: [][]interface{}{{uploadedAt.Format(time.RFC1123), videoURL}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: append row: %v", ErrSheetAppend, err)
	}

	c.logger.Debugf("Appended upload row to sheet %q", c.sheetTitle)
	return nil
}

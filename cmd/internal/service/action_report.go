package service

import (
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/lifecycle"
	"gestaoacoes/cmd/internal/infrastructure/spreadsheet"
	"gestaoacoes/cmd/internal/utils/apierror"
	"time"

	"github.com/labstack/gommon/log"
)

const reportDateLayout = "02/01/2006"

// ExportActions renders the visible actions as a workbook and returns it
// along with a suggested file name.
func (s *ActionService) ExportActions(actor *entity.User, q *contract.ActionQuery) ([]byte, string, apierror.ErrorResponse) {
	if perr := s.Policy.CanExport(actor); perr != nil {
		return nil, "", perr
	}

	actions, apierr := s.visibleFromQuery(actor, q)
	if apierr != nil {
		return nil, "", apierr
	}

	names, apierr := s.directoryNames()
	if apierr != nil {
		return nil, "", apierr
	}

	now := s.Clock()
	rows := make([]*spreadsheet.Row, len(actions))
	for i, a := range actions {
		rows[i] = &spreadsheet.Row{
			Subject:     a.Subject,
			Status:      string(lifecycle.EffectiveStatus(a, now)),
			Responsible: names[a.ResponsibleID],
			Company:     names[a.CompanyID],
			Client:      nameOf(names, a.ClientID),
			Requester:   nameOf(names, a.RequesterID),
			StartDate:   formatDay(a.StartDate),
			EndDate:     formatDay(a.EndDate),
		}
		if a.CompletedAt != nil {
			rows[i].CompletedAt = formatDay(*a.CompletedAt)
		}
	}

	data, err := spreadsheet.WriteActions(rows)
	if err != nil {
		log.Errorf("failed to render action report for %s: %v", actor.ID, err)
		return nil, "", apierror.InternalServerError
	}

	filename := "acoes-" + time.UnixMilli(now).UTC().Format("20060102") + ".xlsx"
	return data, filename, nil
}

// directoryNames maps every directory id to its display name. Snowflakes
// are unique across tables so a single map is enough.
func (s *ActionService) directoryNames() (map[string]string, apierror.ErrorResponse) {
	companies, err := s.Directory.Cache.Companies()
	if err != nil {
		log.Errorf("failed to load companies: %v", err)
		return nil, apierror.InternalServerError
	}

	clients, err := s.Directory.Cache.Clients()
	if err != nil {
		log.Errorf("failed to load clients: %v", err)
		return nil, apierror.InternalServerError
	}

	responsibles, err := s.Directory.Cache.Responsibles()
	if err != nil {
		log.Errorf("failed to load responsibles: %v", err)
		return nil, apierror.InternalServerError
	}

	names := make(map[string]string, len(companies)+len(clients)+len(responsibles))
	for _, c := range companies {
		names[c.ID] = c.Name
	}
	for _, c := range clients {
		names[c.ID] = c.Name
	}
	for _, r := range responsibles {
		names[r.ID] = r.Name
	}
	return names, nil
}

func nameOf(names map[string]string, id *string) string {
	if id == nil {
		return ""
	}
	return names[*id]
}

func formatDay(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).UTC().Format(reportDateLayout)
}

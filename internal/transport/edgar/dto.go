package edgar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edgardesk/edgardesk/internal/domain"
)

// submissionsResponse mirrors data.sec.gov/submissions/CIK##########.json.
// The "recent" block is column-oriented: parallel arrays indexed together.
type submissionsResponse struct {
	CIK       string   `json:"cik"`
	Name      string   `json:"name"`
	Tickers   []string `json:"tickers"`
	Exchanges []string `json:"exchanges"`
	Filings   struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

type recentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

func (r *submissionsResponse) toCompany(cik string) domain.Company {
	c := domain.Company{CIK: cik, Name: r.Name}
	if len(r.Tickers) > 0 {
		c.Ticker = r.Tickers[0]
	}
	if len(r.Exchanges) > 0 {
		c.Exchange = r.Exchanges[0]
	}
	return c
}

// toFilings converts the column-oriented recent block into domain filings,
// preserving EDGAR's newest-first order. Amendments are linked to the most
// recent earlier filing of the same base form.
func (r *submissionsResponse) toFilings(cik, archiveBaseURL string) []domain.Filing {
	recent := &r.Filings.Recent
	n := len(recent.AccessionNumber)
	if len(recent.Form) < n {
		n = len(recent.Form)
	}
	if len(recent.FilingDate) < n {
		n = len(recent.FilingDate)
	}

	filings := make([]domain.Filing, 0, n)
	for i := 0; i < n; i++ {
		accession := recent.AccessionNumber[i]
		if accession == "" {
			continue
		}

		base, amendment := domain.BaseFormOf(recent.Form[i])
		date, err := time.Parse("2006-01-02", recent.FilingDate[i])
		if err != nil {
			continue
		}

		var primaryDoc string
		if i < len(recent.PrimaryDocument) {
			primaryDoc = recent.PrimaryDocument[i]
		}

		filings = append(filings, domain.Filing{
			CIK:             cik,
			AccessionNumber: accession,
			FormType:        recent.Form[i],
			BaseForm:        base,
			IsAmendment:     amendment,
			FilingDate:      date,
			PrimaryDocument: primaryDoc,
			URL:             archiveURL(archiveBaseURL, cik, accession, primaryDoc),
		})
	}

	linkAmendments(filings)
	return filings
}

// linkAmendments points each amendment at the filing it amends: the most
// recent earlier filing with the same base form. Expects newest-first order.
func linkAmendments(filings []domain.Filing) {
	for i := range filings {
		if !filings[i].IsAmendment {
			continue
		}
		for j := i + 1; j < len(filings); j++ {
			if filings[j].BaseForm == filings[i].BaseForm && !filings[j].IsAmendment {
				filings[i].AmendedAccession = filings[j].AccessionNumber
				break
			}
		}
	}
}

// archiveURL builds the EDGAR archive URL for a primary document.
// The accession directory segment drops the dashes.
func archiveURL(base, cik, accession, primaryDoc string) string {
	dir := strings.ReplaceAll(accession, "-", "")
	if primaryDoc == "" {
		return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s.txt", base, cik, dir, accession)
	}
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s", base, cik, dir, primaryDoc)
}

// tickerEntry mirrors one record of www.sec.gov/files/company_tickers.json.
type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

func (e *tickerEntry) toCompany() domain.Company {
	return domain.Company{
		CIK:    strconv.FormatInt(e.CIK, 10),
		Name:   e.Title,
		Ticker: e.Ticker,
	}
}

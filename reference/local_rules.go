package reference

import (
	"fmt"
	"os"

	"github.com/urbanarchive/submiteval/archive"
	"gopkg.in/yaml.v3"
)

// localRuleRow mirrors one row of the remote rule table, for the YAML
// override file used in offline fixtures and CI. Field names match the
// table's column names so the zero value of an omitted key decodes to an
// empty string/zero int exactly like a missing JSON key would.
type localRuleRow struct {
	Numar            int    `yaml:"numar_regula"`
	TipRegulaID      int    `yaml:"tip_regula_id"`
	CategorieRegulaID int   `yaml:"categorie_regula_id"`
	TipValidareID    int    `yaml:"tip_validare_id"`
	TipAlertaID      int    `yaml:"tip_alerta_id"`
	FormulaRegula    string `yaml:"formula_regula"`
	ValoareRegula    string `yaml:"valoare_regula"`
	Descriere        string `yaml:"descriere"`
	PassAlerta       string `yaml:"pass_alerta"`
	FailAlerta       string `yaml:"fail_alerta"`
	ErrorAlerta      string `yaml:"error_alerta"`
	MesajModificare  string `yaml:"mesaj_modificare"`
	EroareModificare string `yaml:"eroare_modificare"`
}

// LoadLocalRules reads a YAML rule list from path and decodes it into the
// same column shape HTTPLoader.LoadRules produces, for --rules-file runs
// that must work without network access to the reference service.
func LoadLocalRules(path string) (*archive.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read local rules file: %w", err)
	}

	var rows []localRuleRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse local rules file: %w", err)
	}

	table := &archive.Table{Columns: ruleColumns, GeometryColumn: -1}
	for _, r := range rows {
		table.Rows = append(table.Rows, []any{
			r.Numar, r.TipRegulaID, r.CategorieRegulaID, r.TipValidareID,
			r.TipAlertaID, r.FormulaRegula, r.ValoareRegula, r.Descriere,
			r.PassAlerta, r.FailAlerta, r.ErrorAlerta, r.MesajModificare, r.EroareModificare,
		})
	}
	return table, nil
}

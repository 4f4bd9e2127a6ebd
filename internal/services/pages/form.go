package pages

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

// Input types that carry no user-editable value
var skippedInputTypes = map[string]bool{
	"hidden": true, "submit": true, "button": true, "image": true, "reset": true, "file": true,
}

// Framework inputs present on every Rails form
var skippedPrefixes = []string{"utf8", "authenticity_token", "commit"}

// formScope is the issue form, falling back to #content and then the whole document
func formScope(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"#issue-form", "#content"} {
		if s := doc.Find(selector).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

// Fields enumerates the interactive elements of a creation or edit form.
// Field ids are unique; the first element with a given id wins.
func (e *Extractor) Fields(doc *goquery.Document) []models.FieldDescriptor {
	scope := formScope(doc)
	seen := map[string]bool{}
	fields := []models.FieldDescriptor{}

	scope.Find("input, select, textarea").Each(func(_ int, el *goquery.Selection) {
		id, _ := el.Attr("id")
		name, _ := el.Attr("name")
		if id == "" && name == "" {
			return
		}

		kind, ok := inputKind(el)
		if !ok || skippedField(id, name) {
			return
		}

		fieldID := id
		if fieldID == "" {
			fieldID = name
		}
		if seen[fieldID] {
			return
		}
		seen[fieldID] = true

		label, labelSel := resolveLabel(doc, el, fieldID)
		_, disabled := el.Attr("disabled")

		field := models.FieldDescriptor{
			ID:        fieldID,
			Label:     label,
			InputKind: kind,
			Required:  isRequired(el, labelSel),
			Enabled:   !disabled,
		}
		if cf := customFieldID(el, scope, id, name); cf != "" {
			field.IsCustomField = true
			field.CustomFieldID = cf
		}
		if kind == models.InputSelect {
			field.Options = options(el)
		}
		fields = append(fields, field)
	})

	e.logger.Debug().Int("fields", len(fields)).Msg("Form fields enumerated")
	return fields
}

func inputKind(el *goquery.Selection) (models.InputKind, bool) {
	switch goquery.NodeName(el) {
	case "select":
		return models.InputSelect, true
	case "textarea":
		return models.InputTextarea, true
	}

	typ, _ := el.Attr("type")
	typ = strings.ToLower(strings.TrimSpace(typ))
	if skippedInputTypes[typ] {
		return "", false
	}
	switch typ {
	case "checkbox":
		return models.InputCheckbox, true
	case "radio":
		return models.InputRadio, true
	case "date":
		return models.InputDate, true
	case "number":
		return models.InputNumber, true
	default:
		return models.InputText, true
	}
}

func skippedField(id, name string) bool {
	for _, prefix := range skippedPrefixes {
		if (id != "" && strings.HasPrefix(id, prefix)) || (id == "" && strings.HasPrefix(name, prefix)) {
			return true
		}
	}
	return false
}

// resolveLabel tries label[for=id], a label in the parent, a preceding sibling
// label, then synthesizes one from the id.
func resolveLabel(doc *goquery.Document, el *goquery.Selection, fieldID string) (string, *goquery.Selection) {
	candidates := []*goquery.Selection{
		doc.Find(`label[for="` + fieldID + `"]`).First(),
		el.Parent().ChildrenFiltered("label").First(),
		el.PrevAllFiltered("label").First(),
	}
	for _, label := range candidates {
		if label.Length() == 0 {
			continue
		}
		if text := labelText(label); text != "" {
			return text, label
		}
	}
	return synthesizeLabel(fieldID), nil
}

func labelText(label *goquery.Selection) string {
	return cleanText(strings.ReplaceAll(label.Text(), "*", ""))
}

func synthesizeLabel(fieldID string) string {
	words := strings.Fields(strings.ReplaceAll(strings.TrimPrefix(fieldID, "issue_"), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Unknown Field"
	}
	return strings.Join(words, " ")
}

func isRequired(el, label *goquery.Selection) bool {
	if _, ok := el.Attr("required"); ok {
		return true
	}
	if label != nil {
		if label.Find(".required, .req").Length() > 0 || strings.Contains(label.Text(), "*") {
			return true
		}
	}
	return el.Parent().HasClass("required")
}

// customFieldID prefers a cf_<id> class on the element or an ancestor inside the
// form, then the custom_field_values id/name conventions.
func customFieldID(el, scope *goquery.Selection, id, name string) string {
	if cf := customFieldIDFromClass(el); cf != "" {
		return cf
	}
	cf := ""
	el.ParentsUntilSelection(scope).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		cf = customFieldIDFromClass(p)
		return cf == ""
	})
	if cf != "" {
		return cf
	}
	if cf = matchID(customFieldIDPattern, id); cf != "" {
		return cf
	}
	return matchID(customFieldNamePattern, name)
}

func options(sel *goquery.Selection) []models.Option {
	opts := []models.Option{}
	sel.Find("option").Each(func(_ int, o *goquery.Selection) {
		text := cleanText(o.Text())
		value, ok := o.Attr("value")
		if !ok {
			value = text
		}
		if value == "" && text == "" {
			return
		}
		opts = append(opts, models.Option{Value: value, Text: text})
	})
	return opts
}

// SelectOptions returns the options of select#id with a non-empty value.
// ok is false when the select is absent.
func SelectOptions(doc *goquery.Document, id string) (opts []models.Option, ok bool) {
	sel := doc.Find(`select[id="` + id + `"]`).First()
	if sel.Length() == 0 {
		return nil, false
	}
	opts = []models.Option{}
	for _, o := range options(sel) {
		if o.Value != "" {
			opts = append(opts, o)
		}
	}
	return opts, true
}

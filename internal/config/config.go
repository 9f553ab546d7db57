package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type EditorOptions struct {
	SlashTrigger    string  `toml:"slash-trigger"`
	HoverDebounceMs int     `toml:"hover-debounce-ms"`
	TableRows       int     `toml:"table-rows"`
	TableColumns    int     `toml:"table-columns"`
	MinColumnWidth  float64 `toml:"min-column-width"`
	MaxHeadingLevel int     `toml:"max-heading-level"`
	CodeTabWidth    int     `toml:"code-tab-width"`
}

// SlashRune returns the configured menu trigger as a rune, falling back
// to '/' when the config value is empty.
func (o EditorOptions) SlashRune() rune {
	for _, r := range o.SlashTrigger {
		return r
	}
	return '/'
}

type Theme struct {
	Foreground             string `toml:"foreground"`
	Background             string `toml:"background"`
	StatuslineForeground   string `toml:"statusline-foreground"`
	StatuslineBackground   string `toml:"statusline-background"`
	SelectionForeground    string `toml:"selection-foreground"`
	SelectionBackground    string `toml:"selection-background"`
	BlockSelectForeground  string `toml:"block-select-foreground"`
	BlockSelectBackground  string `toml:"block-select-background"`
	MenuForeground         string `toml:"menu-foreground"`
	MenuBackground         string `toml:"menu-background"`
	MenuSelectedForeground string `toml:"menu-selected-foreground"`
	MenuSelectedBackground string `toml:"menu-selected-background"`
	DropIndicator          string `toml:"drop-indicator"`
	HeadingForeground      string `toml:"heading-foreground"`
	CodeForeground         string `toml:"code-foreground"`
	CodeBackground         string `toml:"code-background"`
	TableBorder            string `toml:"table-border"`
	CheckedForeground      string `toml:"checked-foreground"`
	SyntaxKeyword          string `toml:"syntax-keyword"`
	SyntaxString           string `toml:"syntax-string"`
	SyntaxComment          string `toml:"syntax-comment"`
	SyntaxType             string `toml:"syntax-type"`
	SyntaxFunction         string `toml:"syntax-function"`
	SyntaxNumber           string `toml:"syntax-number"`
	SyntaxConstant         string `toml:"syntax-constant"`
	SyntaxOperator         string `toml:"syntax-operator"`
	SyntaxPunctuation      string `toml:"syntax-punctuation"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			SlashTrigger:    "/",
			HoverDebounceMs: 120,
			TableRows:       3,
			TableColumns:    3,
			MinColumnWidth:  10,
			MaxHeadingLevel: 3,
			CodeTabWidth:    4,
		},
		Theme: Theme{
			Foreground:             "#B3B1AD",
			Background:             "#0A0E14",
			StatuslineForeground:   "#B3B1AD",
			StatuslineBackground:   "#0F1419",
			SelectionForeground:    "#B3B1AD",
			SelectionBackground:    "#27425A",
			BlockSelectForeground:  "#B3B1AD",
			BlockSelectBackground:  "#1E3A52",
			MenuForeground:         "#B3B1AD",
			MenuBackground:         "#0F1419",
			MenuSelectedForeground: "#0A0E14",
			MenuSelectedBackground: "#E6B450",
			DropIndicator:          "#E6B450",
			HeadingForeground:      "#59C2FF",
			CodeForeground:         "#BAE67E",
			CodeBackground:         "#0F1419",
			TableBorder:            "#3E4B59",
			CheckedForeground:      "#5C6773",
			SyntaxKeyword:          "#FFA759",
			SyntaxString:           "#BAE67E",
			SyntaxComment:          "#5C6773",
			SyntaxType:             "#5CCFE6",
			SyntaxFunction:         "#FFD173",
			SyntaxNumber:           "#D4BFFF",
			SyntaxConstant:         "#FFDD8E",
			SyntaxOperator:         "#F29668",
			SyntaxPunctuation:      "#C0C0C0",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, err
	}

	if userCfg.Editor.SlashTrigger != "" {
		cfg.Editor.SlashTrigger = userCfg.Editor.SlashTrigger
	}
	if userCfg.Editor.HoverDebounceMs > 0 {
		cfg.Editor.HoverDebounceMs = userCfg.Editor.HoverDebounceMs
	}
	if userCfg.Editor.TableRows > 0 {
		cfg.Editor.TableRows = userCfg.Editor.TableRows
	}
	if userCfg.Editor.TableColumns > 0 {
		cfg.Editor.TableColumns = userCfg.Editor.TableColumns
	}
	if userCfg.Editor.MinColumnWidth > 0 {
		cfg.Editor.MinColumnWidth = userCfg.Editor.MinColumnWidth
	}
	if userCfg.Editor.MaxHeadingLevel > 0 {
		cfg.Editor.MaxHeadingLevel = userCfg.Editor.MaxHeadingLevel
	}
	if userCfg.Editor.CodeTabWidth > 0 {
		cfg.Editor.CodeTabWidth = userCfg.Editor.CodeTabWidth
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.SelectionForeground != "" {
		dst.SelectionForeground = src.SelectionForeground
	}
	if src.SelectionBackground != "" {
		dst.SelectionBackground = src.SelectionBackground
	}
	if src.BlockSelectForeground != "" {
		dst.BlockSelectForeground = src.BlockSelectForeground
	}
	if src.BlockSelectBackground != "" {
		dst.BlockSelectBackground = src.BlockSelectBackground
	}
	if src.MenuForeground != "" {
		dst.MenuForeground = src.MenuForeground
	}
	if src.MenuBackground != "" {
		dst.MenuBackground = src.MenuBackground
	}
	if src.MenuSelectedForeground != "" {
		dst.MenuSelectedForeground = src.MenuSelectedForeground
	}
	if src.MenuSelectedBackground != "" {
		dst.MenuSelectedBackground = src.MenuSelectedBackground
	}
	if src.DropIndicator != "" {
		dst.DropIndicator = src.DropIndicator
	}
	if src.HeadingForeground != "" {
		dst.HeadingForeground = src.HeadingForeground
	}
	if src.CodeForeground != "" {
		dst.CodeForeground = src.CodeForeground
	}
	if src.CodeBackground != "" {
		dst.CodeBackground = src.CodeBackground
	}
	if src.TableBorder != "" {
		dst.TableBorder = src.TableBorder
	}
	if src.CheckedForeground != "" {
		dst.CheckedForeground = src.CheckedForeground
	}
	if src.SyntaxKeyword != "" {
		dst.SyntaxKeyword = src.SyntaxKeyword
	}
	if src.SyntaxString != "" {
		dst.SyntaxString = src.SyntaxString
	}
	if src.SyntaxComment != "" {
		dst.SyntaxComment = src.SyntaxComment
	}
	if src.SyntaxType != "" {
		dst.SyntaxType = src.SyntaxType
	}
	if src.SyntaxFunction != "" {
		dst.SyntaxFunction = src.SyntaxFunction
	}
	if src.SyntaxNumber != "" {
		dst.SyntaxNumber = src.SyntaxNumber
	}
	if src.SyntaxConstant != "" {
		dst.SyntaxConstant = src.SyntaxConstant
	}
	if src.SyntaxOperator != "" {
		dst.SyntaxOperator = src.SyntaxOperator
	}
	if src.SyntaxPunctuation != "" {
		dst.SyntaxPunctuation = src.SyntaxPunctuation
	}
}

func ConfigDir() (string, error) {
	if v := os.Getenv("BEDIT_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "bedit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bedit"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

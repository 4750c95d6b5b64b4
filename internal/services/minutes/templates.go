package minutes

import "github.com/hyuoka/workpal/internal/models"

// builtinTemplates are the recurring meetings whose minutes get
// distributed the same way every time. FolderPath points at the Drive
// folder chain holding the minutes document; lookup falls back to a
// global name search when the chain is missing.
var builtinTemplates = []models.Template{
	{
		ID:    "improvement",
		Title: "改善活動推進委員会",
		Recipients: []string{
			"daisuke_miyamoto@saimiya.com",
			"fumie_sonobe@saimiya.com",
			"hitoshi_watarai@saimiya.com",
			"housyasen@saimiya.com",
			"satoru_muroi@saimiya.com",
			"takayoshi_ikeda@saimiya.com",
			"youichi_teduka@saimiya.com",
			"yukiko_nakajima@saimiya.com",
			"keigo_muroi@saimiya.com",
		},
		Subject: "YYYYMMDD改善活動推進委員会",
		Body:    "YYYYMMDD改善活動推進委員会の議事録です\n久岡　裕明",
		Subtasks: []string{
			"改善活動推進委員会 資料作成",
			"改善活動推進委員会 会議出席",
			"改善活動推進委員会 議事録作成",
			"改善活動推進委員会 議事録送付・共有",
		},
		FolderPath: []string{"職場の仕事", "課内業務", "改善活動推進委員会"},
		FileName:   "改善活動推進委員会(テンプレート).docx",
	},
	{
		ID:    "support",
		Title: "患者サポート部門会議",
		Recipients: []string{
			"daisuke_miyamoto@saimiya.com",
			"fumie_sonobe@saimiya.com",
			"hitoshi_watarai@saimiya.com",
			"housyasen@saimiya.com",
			"satoru_muroi@saimiya.com",
			"takayoshi_ikeda@saimiya.com",
			"youichi_teduka@saimiya.com",
			"yukiko_nakajima@saimiya.com",
			"keigo_muroi@saimiya.com",
		},
		Subject: "YYYYMMDD患者サポート部門会議",
		Body:    "YYYYMMDD患者サービス部門会議の議事録です\n久岡　裕明",
		Subtasks: []string{
			"患者サポート部門会議 準備",
			"患者サポート部門会議 出席",
			"患者サポート部門会議 議事録作成",
			"患者サポート部門会議 配信",
		},
		FolderPath: []string{"職場の仕事", "課内業務", "改善活動推進委員会"},
		FileName:   "患者サポート部門会議（テンプレート）.docx",
	},
}

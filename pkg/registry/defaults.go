package registry

// Template names used by the post-processing workflow.
const (
	InfoTable         = "pygrb_grb_info_table"
	SNRTimeseries     = "pygrb_plot_snr_timeseries"
	CohIFOSNR         = "pygrb_plot_coh_ifosnr"
	ChisqVeto         = "pygrb_plot_chisq_veto"
	NullStats         = "pygrb_plot_null_stats"
	StatsDistribution = "pygrb_plot_stats_distribution"
	PageTables        = "pygrb_page_tables"
	InjsResults       = "pygrb_plot_injs_results"
	Efficiency        = "pygrb_efficiency"
	ResultsPage       = "results_page"
)

// Defaults returns the templates the workflow knows how to schedule.
func Defaults() []Template {
	return []Template{
		{Name: InfoTable, Extensions: []string{".html"}},
		{Name: SNRTimeseries, Extensions: []string{".png"}},
		{Name: CohIFOSNR, Extensions: []string{".png"}},
		{Name: ChisqVeto, Extensions: []string{".png"}},
		{Name: NullStats, Extensions: []string{".png"}},
		{Name: StatsDistribution, Extensions: []string{".png"}},
		// Tables are written both as a rendered page and as a data file.
		{Name: PageTables, Extensions: []string{".html", ".h5"}},
		{Name: InjsResults, Extensions: []string{".png"}},
		{Name: Efficiency, Extensions: []string{".png"}},
		{Name: ResultsPage, Description: "RESULTS_PAGE", Extensions: []string{".html"}},
	}
}

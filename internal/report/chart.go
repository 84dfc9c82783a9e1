package report

import (
	"html/template"
	"os"
)

type chartPoint struct {
	Label string
	Count int64
}

var chartTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Weekly Attack Trends</title>
    <script type="text/javascript" src="https://www.gstatic.com/charts/loader.js"></script>
    <script type="text/javascript">
      google.charts.load('current', {'packages':['corechart']});
      google.charts.setOnLoadCallback(drawChart);

      function drawChart() {
        var data = google.visualization.arrayToDataTable([
          ['Week End Date', 'Attacks'],
{{- range .}}
          ['{{.Label}}', {{.Count}}],
{{- end}}
        ]);

        var options = {
          title: 'Weekly Attack Trends',
          titleTextStyle: {fontSize: 18, bold: true},
          hAxis: {
            title: 'Week End-Date',
            titleTextStyle: {fontSize: 14, bold: true},
            textStyle: {fontSize: 12}
          },
          vAxis: {
            title: 'Number of Attacks',
            titleTextStyle: {fontSize: 14, bold: true},
            format: '#,###'
          },
          legend: {position: 'none'},
          backgroundColor: '#f8f9fa',
          chartArea: {left: 80, top: 80, width: '75%', height: '70%'},
          colors: ['#007bff'],
          bar: {groupWidth: '60%'}
        };

        var chart = new google.visualization.ColumnChart(document.getElementById('weekly_chart'));
        chart.draw(data, options);
      }
    </script>
</head>
<body>
    <div style="text-align: center; margin: 20px;">
        <div id="weekly_chart" style="width: 100%; height: 500px;"></div>
    </div>
</body>
</html>
`))

// WriteChartHTML renders the weekly trends series as a Google Charts column
// chart, week-end dates on the X axis.
func WriteChartHTML(path string, rows []TrendRow) error {
	points := make([]chartPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, chartPoint{
			Label: row.WeekEnd.Format("01/02/06"),
			Count: row.Count,
		})
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return chartTemplate.Execute(f, points)
}

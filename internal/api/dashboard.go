package api

import "net/http"

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
    <title>codescope - Code Intelligence</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .header { text-align: center; color: #2c3e50; margin-bottom: 30px; }
        .features { display: flex; flex-wrap: wrap; gap: 20px; }
        .feature { flex: 1; min-width: 300px; padding: 20px; border: 1px solid #bdc3c7; border-radius: 8px; }
        .status { padding: 10px; margin: 10px 0; border-radius: 5px; background: #d4edda; color: #155724; }
        .links { margin-top: 40px; text-align: center; }
        .links a { background: #3498db; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; margin: 0 10px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>codescope</h1>
            <h2>Deterministic Code Intelligence</h2>
        </div>
        <div class="status">System operational &mdash; realtime analysis and live metrics available</div>
        <div class="features">
            <div class="feature">
                <h3>Security Analysis</h3>
                <p>Vulnerability detection: hardcoded secrets, weak hashes, SQL concatenation</p>
            </div>
            <div class="feature">
                <h3>Performance Analysis</h3>
                <p>Oversized files, deep nesting, long-line hotspots</p>
            </div>
            <div class="feature">
                <h3>Code Quality</h3>
                <p>Comment coverage and maintainability scoring</p>
            </div>
            <div class="feature">
                <h3>Dependency Check</h3>
                <p>Manifest discovery across language ecosystems</p>
            </div>
        </div>
        <div class="links">
            <a href="/api/v1/metrics">Live Metrics</a>
            <a href="/health">Health Check</a>
        </div>
    </div>
</body>
</html>
`

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(dashboardHTML))
}

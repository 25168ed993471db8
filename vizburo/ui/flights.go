package ui

const flightsTemplate = `
{{define "flights"}}
<section id="flights"
         hx-get="/dashboard/flights"
         hx-trigger="every {{.RefreshRate}}s, refresh-rate-changed from:body"
         hx-swap="outerHTML"
         data-markers="{{.MarkersJSON}}"
         data-show-map="{{.ShowMap}}">
    {{if .Error}}
    <div class="rounded-md bg-red-50 border border-red-200 p-4 text-red-700 mb-4">{{.Error}}</div>
    {{else}}
    {{if .FetchFailed}}
    <div class="rounded-md bg-red-50 border border-red-200 p-4 text-red-700 mb-4">{{.FetchFailedMessage}}</div>
    {{end}}

    <h2 class="text-xl font-semibold mb-3">📍 {{.View.Heading}}</h2>

    {{if .View.Empty}}
    <div class="rounded-md bg-blue-50 border border-blue-200 p-4 text-blue-700">{{.View.Message}}</div>
    {{else}}
    <div class="overflow-x-auto rounded-lg border border-gray-200 shadow-sm">
        <table class="min-w-full text-sm">
            <thead class="bg-gray-100">
                <tr>
                    {{range .View.Table.Columns}}<th class="px-3 py-2 text-left font-medium text-gray-700">{{.}}</th>{{end}}
                </tr>
            </thead>
            <tbody>
                {{range $i, $row := .View.Table.Rows}}
                <tr class="{{if mod $i 2}}bg-gray-50{{else}}bg-white{{end}}">
                    {{range $row}}<td class="px-3 py-1 whitespace-nowrap">{{.}}</td>{{end}}
                </tr>
                {{end}}
            </tbody>
        </table>
    </div>
    {{end}}
    {{end}}

    {{if .UpdatedAt}}<p class="text-xs text-gray-400 mt-2">Updated {{.UpdatedAt}}</p>{{end}}
</section>
{{end}}
`

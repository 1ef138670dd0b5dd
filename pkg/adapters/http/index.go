package http

// indexHTML is the upload page. It posts the form to /process-files/ and
// shows whichever of "error" or "message" comes back.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>File Validation App</title>
    <style>
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background-color: #f2f7fb;
            margin: 0;
            display: flex;
            justify-content: center;
            align-items: center;
            min-height: 100vh;
        }
        .container {
            background-color: white;
            padding: 30px;
            border-radius: 12px;
            box-shadow: 0 10px 30px rgba(0, 0, 0, 0.1);
            width: 100%;
            max-width: 600px;
            text-align: center;
        }
        h2 { color: #4CAF50; font-size: 24px; font-weight: 600; }
        label { display: block; font-weight: 500; margin: 20px 0 10px; font-size: 16px; }
        select, input[type="file"] {
            padding: 12px 20px;
            font-size: 16px;
            border: 1px solid #ddd;
            border-radius: 8px;
            width: 100%;
            box-sizing: border-box;
        }
        button {
            margin-top: 30px;
            padding: 12px 20px;
            border: none;
            border-radius: 8px;
            background-color: #007BFF;
            color: white;
            font-size: 16px;
            cursor: pointer;
            width: 100%;
        }
        button:hover { background-color: #0056b3; }
        #output { margin-top: 30px; text-align: left; }
    </style>
</head>
<body>
    <div class="container">
        <h2>File Validation</h2>
        <form id="upload">
            <label for="file_type">Select file type:</label>
            <select id="file_type" name="file_type">
                <option value="csv">CSV</option>
                <option value="txt">TXT</option>
            </select>
            <label for="report_file">Choose file:</label>
            <input type="file" id="report_file" name="report_file" accept=".csv" required>
            <button type="submit">Upload and Validate</button>
        </form>
        <div id="output"></div>
    </div>
    <script>
        const form = document.getElementById("upload");
        const fileType = document.getElementById("file_type");
        const fileInput = document.getElementById("report_file");
        const output = document.getElementById("output");

        fileType.addEventListener("change", () => {
            fileInput.accept = "." + fileType.value;
        });

        form.addEventListener("submit", async (event) => {
            event.preventDefault();
            output.innerHTML = "<p>Processing file...</p>";
            const body = new FormData(form);
            try {
                const response = await fetch("/process-files/?file_type=" + encodeURIComponent(fileType.value), {
                    method: "POST",
                    body: body,
                });
                const result = await response.json();
                output.innerHTML = result.error || result.message;
            } catch (err) {
                output.textContent = "Upload failed: " + err;
            }
        });
    </script>
</body>
</html>
`
